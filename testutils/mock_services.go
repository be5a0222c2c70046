package testutils

import (
	"errors"

	"github.com/stretchr/testify/mock"
)

var errPasswordMismatch = errors.New("password mismatch")

// MockProducer mocks broker.Producer for testing
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockProducer) Close() {
	m.Called()
}

// StaticHasher is a PasswordHasher that skips bcrypt.
type StaticHasher struct{}

func (StaticHasher) HashPassword(password string) (string, error) {
	return "hashed-" + password, nil
}

func (StaticHasher) ComparePasswords(hashedPassword, password string) error {
	if hashedPassword != "hashed-"+password {
		return errPasswordMismatch
	}
	return nil
}
