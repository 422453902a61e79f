package command

import (
	"errors"
	"strings"
	"testing"
)

// chunkTransport hands out one queued chunk per Read, truncated to len(p).
type chunkTransport struct {
	chunks  [][]byte
	reads   int
	err     error
	written strings.Builder
}

func (t *chunkTransport) Read(p []byte) (int, error) {
	t.reads++
	if len(t.chunks) == 0 {
		return 0, t.err
	}
	n := copy(p, t.chunks[0])
	if n < len(t.chunks[0]) {
		t.chunks[0] = t.chunks[0][n:]
	} else {
		t.chunks = t.chunks[1:]
	}
	return n, nil
}

func (t *chunkTransport) Write(p []byte) (int, error) {
	return t.written.Write(p)
}

func feed(chunks ...string) *chunkTransport {
	t := &chunkTransport{}
	for _, c := range chunks {
		t.chunks = append(t.chunks, []byte(c))
	}
	return t
}

func pollAll(t *testing.T, c *Channel, tr Transport, n int) []Command {
	t.Helper()
	var out []Command
	for i := 0; i < n; i++ {
		cmd, ok, err := c.Poll(tr)
		if err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
		if ok {
			out = append(out, cmd)
		}
	}
	return out
}

func TestPoll_BothModes(t *testing.T) {
	for _, mode := range []Mode{LineBuffered, SingleShot} {
		c := NewChannel(Options{Mode: mode})

		cmd, ok, err := c.Poll(feed("ping\n"))
		if err != nil || !ok || cmd.Kind != Ping {
			t.Fatalf("mode %d: ping -> %v %v %v", mode, cmd, ok, err)
		}

		cmd, ok, err = c.Poll(feed("xyz\n"))
		if err != nil || !ok || cmd.Kind != Unrecognized || cmd.Text != "xyz" {
			t.Fatalf("mode %d: xyz -> %v %v %v", mode, cmd, ok, err)
		}

		cmd, ok, err = c.Poll(feed())
		if err != nil || ok {
			t.Fatalf("mode %d: empty -> %v %v %v", mode, cmd, ok, err)
		}
	}
}

func TestPoll_Vocabulary(t *testing.T) {
	c := NewChannel(Options{})
	cases := map[string]Kind{
		"ping\n": Ping,
		"tick\n": ReportClock,
		"gyro\n": ReportOrientation,
		"PING\n": Unrecognized,
		"ping \n": Unrecognized,
	}
	for in, want := range cases {
		cmd, ok, err := c.Poll(feed(in))
		if err != nil || !ok || cmd.Kind != want {
			t.Fatalf("%q -> %v %v %v want %v", in, cmd, ok, err, want)
		}
	}
}

func TestPoll_WithoutClock(t *testing.T) {
	c := NewChannel(Options{Vocabulary: DefaultVocabulary().WithoutClock()})
	cmd, ok, _ := c.Poll(feed("tick\n"))
	if !ok || cmd.Kind != Unrecognized || cmd.Text != "tick" {
		t.Fatalf("tick -> %v %v", cmd, ok)
	}
	if DefaultVocabulary()["tick"] != ReportClock {
		t.Fatalf("WithoutClock modified the receiver")
	}
}

func TestPoll_BufferedJoinsSplitLine(t *testing.T) {
	c := NewChannel(Options{})
	tr := feed("gy", "ro\n")

	if _, ok, err := c.Poll(tr); ok || err != nil {
		t.Fatalf("first half produced a command: %v %v", ok, err)
	}
	cmd, ok, err := c.Poll(tr)
	if err != nil || !ok || cmd.Kind != ReportOrientation {
		t.Fatalf("joined -> %v %v %v", cmd, ok, err)
	}
}

func TestPoll_SingleShotDropsSplitLine(t *testing.T) {
	c := NewChannel(Options{Mode: SingleShot})
	got := pollAll(t, c, feed("gy", "ro\n"), 2)
	if len(got) != 2 || got[0].Text != "gy" || got[1].Text != "ro" {
		t.Fatalf("got %v", got)
	}
	for _, cmd := range got {
		if cmd.Kind != Unrecognized {
			t.Fatalf("split line parsed as %v", cmd)
		}
	}
}

func TestPoll_BufferedOneCommandPerCall(t *testing.T) {
	c := NewChannel(Options{})
	tr := feed("ping\r\ntick\r\n")

	got := pollAll(t, c, tr, 2)
	if len(got) != 2 || got[0].Kind != Ping || got[1].Kind != ReportClock {
		t.Fatalf("got %v", got)
	}
	if tr.reads != 1 {
		t.Fatalf("reads=%d want 1 (second line served from buffer)", tr.reads)
	}
	if rest := pollAll(t, c, tr, 2); len(rest) != 0 {
		t.Fatalf("trailing LF produced %v", rest)
	}
}

func TestPoll_LineTooLong(t *testing.T) {
	c := NewChannel(Options{MaxLine: 8})
	tr := feed("abcdefgh", "ijk", "lmn\nping\n")

	var errs, cmds int
	var last Command
	for i := 0; i < 6; i++ {
		cmd, ok, err := c.Poll(tr)
		if errors.Is(err, ErrLineTooLong) {
			errs++
		}
		if ok {
			cmds++
			last = cmd
		}
	}
	if errs != 1 {
		t.Fatalf("too-long errors=%d want 1", errs)
	}
	if cmds != 1 || last.Kind != Ping {
		t.Fatalf("cmds=%d last=%v want only ping", cmds, last)
	}
}

func TestPoll_LineTooLongInOneRead(t *testing.T) {
	c := NewChannel(Options{MaxLine: 4})
	tr := feed("abcd", "e\nping\n")
	var gotErr bool
	var cmd Command
	for i := 0; i < 4; i++ {
		cc, ok, err := c.Poll(tr)
		if errors.Is(err, ErrLineTooLong) {
			gotErr = true
		}
		if ok {
			cmd = cc
		}
	}
	if !gotErr || cmd.Kind != Ping {
		t.Fatalf("gotErr=%v cmd=%v", gotErr, cmd)
	}
}

func TestPoll_InvalidEncoding(t *testing.T) {
	for _, mode := range []Mode{LineBuffered, SingleShot} {
		c := NewChannel(Options{Mode: mode})
		tr := feed("\xff\xfe\n")
		_, ok, err := c.Poll(tr)
		if ok || !errors.Is(err, ErrInvalidEncoding) {
			t.Fatalf("mode %d: ok=%v err=%v want ErrInvalidEncoding", mode, ok, err)
		}
		// the channel keeps working afterwards
		cmd, ok, err := c.Poll(feed("ping\n"))
		if err != nil || !ok || cmd.Kind != Ping {
			t.Fatalf("mode %d: after bad line -> %v %v %v", mode, cmd, ok, err)
		}
	}
}

func TestPoll_TransportError(t *testing.T) {
	boom := errors.New("boom")
	for _, mode := range []Mode{LineBuffered, SingleShot} {
		c := NewChannel(Options{Mode: mode})
		_, ok, err := c.Poll(&chunkTransport{err: boom})
		if ok || !errors.Is(err, boom) {
			t.Fatalf("mode %d: ok=%v err=%v", mode, ok, err)
		}
	}
}

func TestCommand_String(t *testing.T) {
	if s := (Command{Kind: Unrecognized, Text: "xyz"}).String(); s != `Unrecognized("xyz")` {
		t.Fatalf("got %s", s)
	}
	if s := (Command{Kind: Ping, Text: "ping"}).String(); s != "Ping" {
		t.Fatalf("got %s", s)
	}
}
