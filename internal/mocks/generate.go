// Package mocks provides gomock implementations of the gateway's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=verifier_mock.go github.com/neurevia/portal-gateway/internal/guard Verifier
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_client_mock.go github.com/neurevia/portal-gateway/internal/auth Client
