package errsink

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/retry"
)

// Report is one diagnostic row.
type Report struct {
	ID         uuid.UUID
	Time       time.Time
	Kind       string
	Code       string
	Category   string
	Message    string
	Action     string
	StatusCode int32
	// Chain holds the message of every error in the chain, outermost first.
	Chain   []string
	Context map[string]string
	Debug   string
}

// NewReport builds the report for err. Errors that are not ClientErrors get an
// empty kind and code.
func NewReport(err error, now time.Time) Report {
	r := Report{
		ID:      uuid.New(),
		Time:    now.UTC(),
		Message: errx.UserString(err),
		Action:  retry.Classify(err).String(),
		Debug:   errx.DebugString(err),
		Context: map[string]string{},
	}
	for _, item := range errx.Chain(err) {
		r.Chain = append(r.Chain, item.Error())
	}
	e, ok := errx.As(err)
	if !ok {
		return r
	}
	r.Kind = string(e.Kind())
	r.Code = e.Code()
	r.Category = e.Description()
	r.StatusCode = errx.StatusCode(e)
	ctx := e.Context()
	keys := make([]string, 0, len(ctx))
	for key := range ctx {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r.Context[key] = fmt.Sprint(ctx[key])
	}
	return r
}
