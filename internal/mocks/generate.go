// Package mocks provides mock implementations of the auth ports for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces in internal/ports.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockUserStore(ctrl)
//	store.EXPECT().FindUserByEmail(gomock.Any(), "ada@example.com").Return(user, nil)
package mocks

// Generate mocks for the auth ports.
// This creates MockUserStore (CreateUser, FindUserByEmail, FindUserByID),
// MockUserCache (Get, Set, Delete), MockPasswordHasher (Hash, Verify)
// and MockTokenCodec (Sign, Verify).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/Digitalmustiii/novaauthentication/internal/ports UserStore,UserCache,PasswordHasher,TokenCodec
