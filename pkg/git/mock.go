package git

// MockMirror provides a mock implementation of the Mirror interface for testing
type MockMirror struct {
	// Calls records each (sourceURL, targetURL, localClone) invocation
	Calls [][3]string

	// MirrorError is returned from MirrorRepository when set
	MirrorError error
}

// NewMockMirror creates a mock mirrorer
func NewMockMirror() *MockMirror {
	return &MockMirror{}
}

func (m *MockMirror) MirrorRepository(sourceURL, targetURL, localClone string) error {
	m.Calls = append(m.Calls, [3]string{sourceURL, targetURL, localClone})
	return m.MirrorError
}
