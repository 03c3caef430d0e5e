// Package errx defines the error returned by every fallible kubeclient operation.
//
// An *Error is a tagged union: Kind names the variant, and each variant carries
// either nothing, a typed payload (a server Status, a proxy URL) or a wrapped
// source error. Sources are kept as-is and exposed through Unwrap, so
// errors.Is, errors.As, Chain and RootCause walk from the outer report to the
// root cause.
//
// Each kind has a stable 5-digit code and a category description:
//   - 80xxx: client errors (Api, transport, decoding, configuration, TLS, ...)
//   - 81xxx: discovery reasons, carried by *DiscoveryError inside KindDiscovery
//
// Some kinds exist only when their capability is compiled in (see package
// features). Their constants and constructors live in build-constrained files,
// so a switch that names KindTransport does not compile under kube_noclient.
// ProxyProtocolDisabled and TLSRequired are always present: they describe a
// capability missing at configuration time.
//
// Example usage:
//
//	err := errx.API(metav1.Status{Code: 410, Reason: metav1.StatusReasonGone})
//
//	kind, _ := errx.KindOf(err)
//	switch kind {
//	case errx.KindAPI:
//		if errx.IsGone(err) {
//			// re-list, then watch again
//		}
//	case errx.KindTLSRequired:
//		// fail fast
//	}
//
//	fmt.Println(errx.UserString(err))  // outermost message
//	fmt.Println(errx.DebugString(err)) // numbered chain with codes and context
package errx
