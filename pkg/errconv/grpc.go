// Package errconv converts ClientErrors to gRPC statuses for services that
// expose kubeclient results over gRPC.
package errconv

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/errx"
)

// byKind maps non-Api kinds to gRPC codes. Gated kinds are added by the
// build-constrained files that know them.
var byKind = map[errx.Kind]codes.Code{
	errx.KindProxyProtocolUnsupported:        codes.FailedPrecondition,
	errx.KindProxyProtocolDisabled:           codes.FailedPrecondition,
	errx.KindInferConfig:                     codes.FailedPrecondition,
	errx.KindTLSRequired:                     codes.FailedPrecondition,
	errx.KindFromUTF8:                        codes.DataLoss,
	errx.KindLinesCodecMaxLineLengthExceeded: codes.ResourceExhausted,
	errx.KindReadEvents:                      codes.Unavailable,
	errx.KindHTTP:                            codes.Internal,
	errx.KindSerde:                           codes.Internal,
	errx.KindBuildRequest:                    codes.InvalidArgument,
	errx.KindDiscovery:                       codes.NotFound,
}

var byHTTPStatus = map[int32]codes.Code{
	http.StatusBadRequest:          codes.InvalidArgument,
	http.StatusUnauthorized:        codes.Unauthenticated,
	http.StatusForbidden:           codes.PermissionDenied,
	http.StatusNotFound:            codes.NotFound,
	http.StatusMethodNotAllowed:    codes.Unimplemented,
	http.StatusConflict:            codes.Aborted,
	http.StatusGone:                codes.FailedPrecondition,
	http.StatusUnprocessableEntity: codes.InvalidArgument,
	http.StatusTooManyRequests:     codes.ResourceExhausted,
	http.StatusInternalServerError: codes.Internal,
	http.StatusNotImplemented:      codes.Unimplemented,
	http.StatusBadGateway:          codes.Unavailable,
	http.StatusServiceUnavailable:  codes.Unavailable,
	http.StatusGatewayTimeout:      codes.DeadlineExceeded,
}

// Code returns the gRPC code for err. Context errors map to their gRPC
// counterparts wherever they sit in the chain.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	e, ok := errx.As(err)
	if !ok {
		return codes.Unknown
	}
	switch e.Kind() {
	case errx.KindAPI:
		return apiCode(e)
	case errx.KindDiscovery:
		if d, ok := e.DiscoveryError(); ok {
			return CodeForReason(d.Reason())
		}
	}
	return CodeForKind(e.Kind())
}

// CodeForKind returns the gRPC code of a non-Api kind. Api errors are mapped
// by their status, so KindAPI returns codes.Unknown.
func CodeForKind(kind errx.Kind) codes.Code {
	if code, ok := byKind[kind]; ok {
		return code
	}
	return codes.Unknown
}

// CodeForReason returns the gRPC code of a discovery reason.
func CodeForReason(reason errx.DiscoveryReason) codes.Code {
	if reason == errx.ReasonInvalidGroupVersion {
		return codes.InvalidArgument
	}
	return codes.NotFound
}

func apiCode(e *errx.Error) codes.Code {
	st, ok := e.ServerStatus()
	if !ok {
		return codes.Unknown
	}
	if st.Reason == metav1.StatusReasonAlreadyExists {
		return codes.AlreadyExists
	}
	if code, ok := byHTTPStatus[st.Code]; ok {
		return code
	}
	switch {
	case st.Code >= 500:
		return codes.Internal
	case st.Code >= 400:
		return codes.FailedPrecondition
	}
	return codes.Unknown
}

// GRPCStatus returns a status with the code from Code and the user-facing
// message of err. A nil error returns nil.
func GRPCStatus(err error) *status.Status {
	if err == nil {
		return nil
	}
	return status.New(Code(err), errx.UserString(err))
}

// ToGRPCError returns err as a gRPC status error. Errors that already carry
// a gRPC status are returned unchanged.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return GRPCStatus(err).Err()
}

// UnaryServerInterceptor converts handler errors to gRPC status errors.
func UnaryServerInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return nil, ToGRPCError(err)
	}
	return resp, nil
}
