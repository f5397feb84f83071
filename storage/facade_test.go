package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// MockFileStorage implements interfaces.FileStorage for facade tests.
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Save(ctx context.Context, filename string, data []byte) error {
	args := m.Called(ctx, filename, data)
	return args.Error(0)
}

func (m *MockFileStorage) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileStorage) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileStorage) Download(ctx context.Context, filename, targetPath string) error {
	args := m.Called(ctx, filename, targetPath)
	return args.Error(0)
}

func (m *MockFileStorage) Exists(ctx context.Context, filename string) (bool, error) {
	args := m.Called(ctx, filename)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, filename string) error {
	args := m.Called(ctx, filename)
	return args.Error(0)
}

// newMockedFacade returns an initialized facade forwarding to the given
// mock driver.
func newMockedFacade(t *testing.T, runner interfaces.FileStorage) *Storage {
	t.Helper()
	s := New(testLogger(), nil)
	err := s.initBackend(context.Background(), &Config{Backend: "mock"},
		func(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
			return runner, nil
		})
	require.NoError(t, err)
	return s
}

func TestFacade_OperationsBeforeInitFail(t *testing.T) {
	s := New(testLogger(), nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.Save(ctx, "a.txt", []byte("x")), interfaces.ErrNotInitialized)

	_, err := s.LoadOnce(ctx, "a.txt")
	assert.ErrorIs(t, err, interfaces.ErrNotInitialized)

	_, err = s.LoadStream(ctx, "a.txt")
	assert.ErrorIs(t, err, interfaces.ErrNotInitialized)

	_, err = s.Load(ctx, "a.txt", false)
	assert.ErrorIs(t, err, interfaces.ErrNotInitialized)

	_, err = s.Exists(ctx, "a.txt")
	assert.ErrorIs(t, err, interfaces.ErrNotInitialized)

	assert.ErrorIs(t, s.Delete(ctx, "a.txt"), interfaces.ErrNotInitialized)
	assert.ErrorIs(t, s.Download(ctx, "a.txt", "out.txt"), interfaces.ErrNotInitialized)
}

func TestFacade_ReinitializationFails(t *testing.T) {
	s := New(testLogger(), nil)
	cfg := &Config{Local: LocalConfig{BaseDir: t.TempDir()}}

	require.NoError(t, s.Init(context.Background(), cfg))
	assert.ErrorIs(t, s.Init(context.Background(), cfg), interfaces.ErrAlreadyInitialized)
}

func TestFacade_ConstructsDriverExactlyOnce(t *testing.T) {
	runner := new(MockFileStorage)
	runner.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	runner.On("Exists", mock.Anything, mock.Anything).Return(true, nil)

	constructed := 0
	s := New(testLogger(), nil)
	err := s.initBackend(context.Background(), &Config{},
		func(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
			constructed++
			return runner, nil
		})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Save(ctx, "a.txt", []byte("x")))
		_, err := s.Exists(ctx, "a.txt")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, constructed)
}

func TestFacade_InitConstructorFailure(t *testing.T) {
	s := New(testLogger(), nil)
	cfg := &Config{Backend: interfaces.BackendS3} // missing bucket

	err := s.Init(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrConfiguration)

	// The facade stays uninitialized after a failed Init.
	assert.ErrorIs(t, s.Save(context.Background(), "a.txt", nil), interfaces.ErrNotInitialized)
}

func TestFacade_LoadDispatchesOnStreamFlag(t *testing.T) {
	ctx := context.Background()
	payload := []byte("payload")

	runner := new(MockFileStorage)
	runner.On("LoadOnce", mock.Anything, "buffered.txt").Return(payload, nil).Once()
	runner.On("LoadStream", mock.Anything, "streamed.txt").
		Return(io.NopCloser(bytes.NewReader(payload)), nil).Once()

	s := newMockedFacade(t, runner)

	rc, err := s.Load(ctx, "buffered.txt", false)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, data)

	rc, err = s.Load(ctx, "streamed.txt", true)
	require.NoError(t, err)
	data, err = io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, data)

	runner.AssertExpectations(t)
}

func TestFacade_LoadMissingFileBothModes(t *testing.T) {
	runner := new(MockFileStorage)
	runner.On("LoadOnce", mock.Anything, "missing.txt").Return(nil, interfaces.ErrNotFound)
	runner.On("LoadStream", mock.Anything, "missing.txt").Return(nil, interfaces.ErrNotFound)

	s := newMockedFacade(t, runner)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing.txt", false)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = s.Load(ctx, "missing.txt", true)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestFacade_PreservesUnderlyingCause(t *testing.T) {
	cause := errors.New("connection reset by backend")
	wrapped := errors.Join(interfaces.ErrTransport, cause)

	runner := new(MockFileStorage)
	runner.On("LoadOnce", mock.Anything, "a.txt").Return(nil, wrapped)
	runner.On("LoadStream", mock.Anything, "a.txt").Return(nil, wrapped)
	runner.On("Exists", mock.Anything, "a.txt").Return(false, wrapped)

	s := newMockedFacade(t, runner)
	ctx := context.Background()

	_, err := s.Load(ctx, "a.txt", false)
	assert.ErrorIs(t, err, interfaces.ErrTransport)
	assert.ErrorIs(t, err, cause)

	_, err = s.Load(ctx, "a.txt", true)
	assert.ErrorIs(t, err, interfaces.ErrTransport)
	assert.ErrorIs(t, err, cause)

	// Transport failure on an existence check is an error, never false.
	_, err = s.Exists(ctx, "a.txt")
	assert.ErrorIs(t, err, interfaces.ErrTransport)
	assert.ErrorIs(t, err, cause)
}

func TestFacade_RoundTripThroughLocalBackend(t *testing.T) {
	s := New(testLogger(), nil)
	cfg := &Config{
		Backend: interfaces.BackendLocal,
		Local:   LocalConfig{BaseDir: t.TempDir()},
	}
	require.NoError(t, s.Init(context.Background(), cfg))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a.txt", []byte("hello")))

	data, err := s.LoadOnce(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	ok, err := s.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "a.txt"))

	ok, err = s.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFacade_BackendReportsResolvedType(t *testing.T) {
	s := New(testLogger(), nil)
	assert.Equal(t, interfaces.BackendType(""), s.Backend())

	cfg := &Config{Local: LocalConfig{BaseDir: t.TempDir()}}
	require.NoError(t, s.Init(context.Background(), cfg))

	// Empty configured type resolves to the local fallback.
	assert.Equal(t, interfaces.BackendLocal, s.Backend())
}
