package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thicket-lang/thicket/scanner"
)

func TestScanAdvancesAndTracksLine(t *testing.T) {
	s := scanner.New("foo\nbar")
	text, ok := s.Scan(scanner.IDENT)
	require.True(t, ok)
	require.Equal(t, "foo", text)
	require.Equal(t, 3, s.Position())
	require.Equal(t, 1, s.Line())

	_, ok = s.Scan(scanner.S)
	require.True(t, ok)
	require.Equal(t, 2, s.Line())

	text, ok = s.Scan(scanner.IDENT)
	require.True(t, ok)
	require.Equal(t, "bar", text)
	require.True(t, s.AtEnd())
}

func TestScanFailureLeavesStateUntouched(t *testing.T) {
	s := scanner.New("123")
	before := s.Position()
	_, ok := s.Scan(scanner.IDENT)
	require.False(t, ok)
	require.Equal(t, before, s.Position())
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := scanner.New("abc")
	require.True(t, s.Peek(scanner.IDENT))
	require.Equal(t, 0, s.Position())
}

func TestBookmarkRestore(t *testing.T) {
	s := scanner.New("abc def")
	mark := s.Bookmark()
	_, _ = s.Scan(scanner.IDENT)
	_, _ = s.Scan(scanner.S)
	require.NotZero(t, s.Position())
	s.Restore(mark)
	require.Equal(t, 0, s.Position())
	require.Equal(t, 1, s.Line())
}

func TestExpectedClearedOnSuccessfulScan(t *testing.T) {
	s := scanner.New("abc")
	s.SetExpected("an identifier")
	_, ok := s.Scan(scanner.IDENT)
	require.True(t, ok)
	require.Equal(t, "", s.Expected())
}

func TestCaptureRecordsExactSpan(t *testing.T) {
	s := scanner.New("  hello world  ")
	text := s.Capture(func() {
		_, _ = s.Scan(scanner.S)
		_, _ = s.Scan(scanner.IDENT)
		_, _ = s.Scan(scanner.S)
		_, _ = s.Scan(scanner.IDENT)
	})
	require.Equal(t, "  hello world", text)
}

func TestCaptureExcludesComments(t *testing.T) {
	s := scanner.New("a/* skip */b")
	text := s.Capture(func() {
		_, _ = s.Scan(scanner.IDENT)
		_, _ = s.Scan(scanner.COMMENT)
		_, _ = s.Scan(scanner.IDENT)
	})
	require.Equal(t, "ab", text)
}

func TestNestedCaptureBuffersBothAccumulate(t *testing.T) {
	s := scanner.New("a b")
	var inner string
	outer := s.Capture(func() {
		_, _ = s.Scan(scanner.IDENT)
		inner = s.Capture(func() {
			_, _ = s.Scan(scanner.S)
			_, _ = s.Scan(scanner.IDENT)
		})
	})
	require.Equal(t, " b", inner)
	require.Equal(t, "a b", outer)
}

func TestGroupExposesLastMatchCaptures(t *testing.T) {
	s := scanner.New(`"hello"`)
	_, ok := s.Scan(scanner.StringDoubleOpen)
	require.True(t, ok)
	require.Equal(t, "hello", s.Group(1))
	require.Equal(t, "", s.Group(2))
}

func TestCaptureDepthTracksLiveBuffers(t *testing.T) {
	s := scanner.New("a b")
	require.Equal(t, 0, s.CaptureDepth())
	s.Capture(func() {
		require.Equal(t, 1, s.CaptureDepth())
		_, _ = s.Scan(scanner.IDENT)
		s.Capture(func() {
			require.Equal(t, 2, s.CaptureDepth())
		})
		require.Equal(t, 1, s.CaptureDepth())
	})
	require.Equal(t, 0, s.CaptureDepth())
}
