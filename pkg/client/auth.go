//go:build !kube_noclient

package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/runtime/schema"
	clientauthenticationv1 "k8s.io/client-go/pkg/apis/clientauthentication/v1"
	"k8s.io/client-go/rest"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"kubeclient/pkg/errx"
)

// Sentinel errors for credential acquisition.
var (
	ErrEmptyToken              = errors.New("credential is empty")
	ErrUnsupportedAuthProvider = errors.New("auth provider plugins are not supported")
	ErrUnsupportedExecVersion  = errors.New("unsupported exec credential api version")
	ErrExecMissingStatus       = errors.New("exec credential has no status")
)

var supportedExecVersions = map[string]bool{
	"client.authentication.k8s.io/v1":      true,
	"client.authentication.k8s.io/v1beta1": true,
}

// AuthError is the source of every AuthFailure. Provider names the credential
// source that failed.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func authFailure(provider string, err error) *errx.Error {
	return errx.Auth(&AuthError{Provider: provider, Err: err})
}

// authenticator decorates a request with credentials.
type authenticator interface {
	apply(req *http.Request) error
	// invalidate drops cached credentials after the server rejects them.
	invalidate()
}

func newAuthenticator(cfg *rest.Config, e Executor) (authenticator, error) {
	switch {
	case cfg.AuthProvider != nil:
		return nil, authFailure(cfg.AuthProvider.Name, ErrUnsupportedAuthProvider)
	case cfg.ExecProvider != nil:
		if !supportedExecVersions[cfg.ExecProvider.APIVersion] {
			return nil, authFailure("exec", fmt.Errorf("%w: %q", ErrUnsupportedExecVersion, cfg.ExecProvider.APIVersion))
		}
		return &execAuth{config: cfg.ExecProvider, executor: e, now: time.Now}, nil
	case cfg.BearerTokenFile != "":
		return &tokenFileAuth{path: cfg.BearerTokenFile}, nil
	case cfg.BearerToken != "":
		return staticAuth{header: "Bearer " + cfg.BearerToken}, nil
	case cfg.Username != "" || cfg.Password != "":
		creds := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		return staticAuth{header: "Basic " + creds}, nil
	}
	return staticAuth{}, nil
}

type staticAuth struct {
	header string
}

func (a staticAuth) apply(req *http.Request) error {
	if a.header != "" {
		req.Header.Set("Authorization", a.header)
	}
	return nil
}

func (staticAuth) invalidate() {}

// tokenFileAuth reads the token on every request so a rotated service account
// token is picked up.
type tokenFileAuth struct {
	path string
}

func (a *tokenFileAuth) apply(req *http.Request) error {
	// #nosec G304 -- path comes from the user's kubeconfig.
	data, err := os.ReadFile(a.path)
	if err != nil {
		return authFailure("token-file", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return authFailure("token-file", fmt.Errorf("%w: %s", ErrEmptyToken, a.path))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (*tokenFileAuth) invalidate() {}

// execAuth runs an exec credential plugin and caches its token until it expires.
type execAuth struct {
	config   *clientcmdapi.ExecConfig
	executor Executor
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func (a *execAuth) apply(req *http.Request) error {
	token, err := a.get(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (a *execAuth) invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
}

func (a *execAuth) get(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token != "" && (a.expires.IsZero() || a.now().Before(a.expires)) {
		return a.token, nil
	}

	cred, err := a.run(ctx)
	if err != nil {
		return "", authFailure("exec", err)
	}
	a.token = cred.Status.Token
	a.expires = time.Time{}
	if cred.Status.ExpirationTimestamp != nil {
		a.expires = cred.Status.ExpirationTimestamp.Time
	}
	return a.token, nil
}

func (a *execAuth) run(ctx context.Context) (*clientauthenticationv1.ExecCredential, error) {
	gv, err := schema.ParseGroupVersion(a.config.APIVersion)
	if err != nil {
		return nil, err
	}
	input := clientauthenticationv1.ExecCredential{}
	input.APIVersion = gv.String()
	input.Kind = "ExecCredential"
	info, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	env := []string{"KUBERNETES_EXEC_INFO=" + string(info)}
	for _, e := range a.config.Env {
		env = append(env, e.Name+"="+e.Value)
	}

	out, err := runPlugin(ctx, a.executor, a.config.Command, a.config.Args, env, nil)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", a.config.Command, err)
	}

	cred := &clientauthenticationv1.ExecCredential{}
	if err := json.Unmarshal(out, cred); err != nil {
		return nil, fmt.Errorf("decoding %s output: %w", a.config.Command, err)
	}
	if cred.APIVersion != a.config.APIVersion {
		return nil, fmt.Errorf("%w: plugin returned %q, want %q", ErrUnsupportedExecVersion, cred.APIVersion, a.config.APIVersion)
	}
	if cred.Status == nil {
		return nil, ErrExecMissingStatus
	}
	if cred.Status.Token == "" {
		return nil, ErrEmptyToken
	}
	return cred, nil
}

// authRoundTripper applies credentials and drops cached ones on a 401.
type authRoundTripper struct {
	auth authenticator
	next http.RoundTripper
}

func (rt *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if err := rt.auth.apply(req); err != nil {
		return nil, err
	}
	resp, err := rt.next.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		rt.auth.invalidate()
	}
	return resp, err
}
