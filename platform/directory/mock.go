package directory

import (
	"context"
	"sync"
)

/*
MockDirectory is an in-memory Directory for tests. Devices maps client id to
device id; Sessions maps user id to the device ids holding live sessions
*/
type MockDirectory struct {
	mutex    *sync.Mutex
	Users    map[string]User
	Devices  map[string]string
	Sessions map[string][]string
	Cleared  []string
}

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		mutex:    &sync.Mutex{},
		Users:    make(map[string]User),
		Devices:  make(map[string]string),
		Sessions: make(map[string][]string),
		Cleared:  make([]string, 0),
	}
}

func (m *MockDirectory) UserByID(ctx context.Context, userID string) (User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	user, ok := m.Users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *MockDirectory) DeviceIDByClientID(ctx context.Context, clientID string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	deviceID, ok := m.Devices[clientID]
	if !ok {
		return "", ErrDeviceNotFound
	}
	return deviceID, nil
}

func (m *MockDirectory) HasSessionElsewhere(ctx context.Context, userID string, deviceID string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, sessionDevice := range m.Sessions[userID] {
		if sessionDevice != deviceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockDirectory) ClearRememberMe(ctx context.Context, userID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Cleared = append(m.Cleared, userID)
	return nil
}
