//go:build kube_ws

package features

func init() { compile(WebSocket) }
