//go:build boringcrypto

package features

func init() { compile(BoringTLS) }
