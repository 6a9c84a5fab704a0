package app

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/navdata"
	"github.com/roman-kulish/ardrone-link/internal/navdata/navdatatest"
	"github.com/roman-kulish/ardrone-link/internal/storage"
)

// commandSink collects the AT frames sent to the command port
type commandSink struct {
	conn net.PacketConn

	mu     sync.Mutex
	frames []string
}

func newCommandSink(t *testing.T) *commandSink {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	s := commandSink{conn: conn}
	go func() {
		buf := make([]byte, 1024)
		for {
			n, _, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			s.mu.Lock()
			s.frames = append(s.frames, string(buf[:n]))
			s.mu.Unlock()
		}
	}()

	return &s
}

func (s *commandSink) port() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

func (s *commandSink) has(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.frames {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func testConfig(t *testing.T, drone *navdatatest.Drone, sink *commandSink) *Config {
	t.Helper()

	c := NewConfig()
	c.Drone.Address = "127.0.0.1"
	c.Drone.CommandPort = sink.port()
	c.Drone.NavdataPort = drone.Addr().(*net.UDPAddr).Port
	c.Drone.LocalNavdataPort = 0

	c.Link.KeepAliveInterval = Duration(20 * time.Millisecond)
	c.Link.ReadTimeout = Duration(200 * time.Millisecond)
	c.Link.FirstFrameAttempts = 40
	c.Link.FirstFramePoll = Duration(10 * time.Millisecond)
	c.Link.ReportInterval = Duration(50 * time.Millisecond)

	c.Startup.Camera = CameraBottom
	c.Startup.Configuration = map[string]string{"control:altitude_max": "3000"}

	c.Journal.Enabled = true
	c.Journal.DataDirectory = t.TempDir()
	c.Journal.FlushInterval = Duration(20 * time.Millisecond)

	if err := c.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return c
}

func TestRun(t *testing.T) {
	drone := navdatatest.NewDrone(t)
	sink := newCommandSink(t)
	config := testConfig(t, drone, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, config, discardLogger())
	}()

	if !drone.WaitForRequests(1, 2*time.Second) {
		t.Fatal("no telemetry request reached the drone")
	}

	frame := navdatatest.NewBuilder(navdata.StatusCommandMode|navdata.StatusWatchdogProblem, 1).
		Demo(navdata.DroneData{BatteryPercentage: 80}).
		Build()

	if !waitFor(2*time.Second, func() bool {
		_ = drone.Send(frame)
		return sink.has("AT*COMWDG=")
	}) {
		t.Fatal("watchdog problem was not answered with AT*COMWDG")
	}

	for _, prefix := range []string{
		"AT*CONFIG=1,\"general:navdata_demo\",\"TRUE\"\r",
		"AT*CTRL=2,5,0\r",
		"AT*CONFIG=3,\"control:altitude_max\",\"3000\"\r",
		"AT*CTRL=4,5,0\r",
		"AT*CONFIG=5,\"video:video_channel\",\"1\"\r",
	} {
		if !sink.has(prefix) {
			t.Errorf("startup frame %q not received", prefix)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	store := storage.NewSqliteStore(filepath.Join(config.Journal.DataDirectory, JournalFile))
	defer store.Close()

	sessions, err := store.Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions", len(sessions))
	}
	if sessions[0].DroneAddress != "127.0.0.1" || sessions[0].Config == nil {
		t.Errorf("unexpected session %+v", sessions[0])
	}

	commands, err := store.Commands(context.Background(), sessions[0].ID)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(commands) < 6 {
		t.Fatalf("got %d journaled commands", len(commands))
	}
	for i, c := range commands {
		if c.Sequence != uint32(i+1) {
			t.Fatalf("journal sequence gap at %d: %d", i, c.Sequence)
		}
	}
	if commands[0].Kind != "SetConfiguration" || commands[1].Kind != "SetControlMode" {
		t.Errorf("unexpected first commands %s, %s", commands[0].Kind, commands[1].Kind)
	}
	if commands[len(commands)-1].Kind != "WatchDog" {
		t.Errorf("last command is %s", commands[len(commands)-1].Kind)
	}
}

func TestRun_MissingDataDirectory(t *testing.T) {
	drone := navdatatest.NewDrone(t)
	sink := newCommandSink(t)
	config := testConfig(t, drone, sink)
	config.Journal.DataDirectory = filepath.Join(t.TempDir(), "missing")

	err := Run(context.Background(), config, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected a missing directory error, got %v", err)
	}
}

func TestListJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), JournalFile)
	store := storage.NewSqliteStore(dbPath)

	sessionID, err := store.CreateSession(context.Background(), "127.0.0.1", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	err = store.StoreCommands(context.Background(), sessionID, []*storage.Command{
		{Sequence: 1, Kind: "FlightMode", Description: "FlightMode takeoff", Frame: "AT*REF=1,290718208\r", Accepted: true, SentAt: time.Now()},
		{Sequence: 2, Kind: "WatchDog", Description: "WatchDog", Frame: "AT*COMWDG=2\r", Accepted: false, SentAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("StoreCommands: %v", err)
	}
	if err = store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var out bytes.Buffer
	if err = ListJournal(context.Background(), &out, ListOptions{DBPath: dbPath}); err != nil {
		t.Fatalf("ListJournal: %v", err)
	}
	if !strings.Contains(out.String(), "127.0.0.1") {
		t.Errorf("session listing misses the drone address:\n%s", out.String())
	}

	out.Reset()
	err = ListJournal(context.Background(), &out, ListOptions{DBPath: dbPath, SessionID: sessionID, RejectedOnly: true})
	if err != nil {
		t.Fatalf("ListJournal: %v", err)
	}
	if !strings.Contains(out.String(), `AT*COMWDG=2\r`) {
		t.Errorf("rejected command missing:\n%s", out.String())
	}
	if strings.Contains(out.String(), "AT*REF") {
		t.Errorf("accepted command listed:\n%s", out.String())
	}
}

func TestListJournal_MissingFile(t *testing.T) {
	err := ListJournal(context.Background(), &bytes.Buffer{}, ListOptions{DBPath: filepath.Join(t.TempDir(), JournalFile)})
	if err == nil {
		t.Fatal("expected an error")
	}
}
