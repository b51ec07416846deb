package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	zlog "github.com/rs/zerolog/log"

	"trackbox/internal/app/sequencer"
	"trackbox/internal/domain/library"
	"trackbox/internal/infra/archive"
)

// console is the interactive command loop.
type console struct {
	seq    *sequencer.Sequencer
	reader *archive.Reader
	lib    *library.Library
}

func newConsole(seq *sequencer.Sequencer, reader *archive.Reader, lib *library.Library) *console {
	return &console{seq: seq, reader: reader, lib: lib}
}

// loop reads commands until EOF, interrupt or the quit command.
func (c *console) loop(ctx context.Context) {
	rl, err := readline.New("trackbox> ")
	if err != nil {
		zlog.Error().Err(err).Msg("console: failed to start readline")
		return
	}
	defer rl.Close()

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if quit := c.dispatch(ctx, fields[0], fields[1:]); quit {
			return
		}
	}
}

func (c *console) dispatch(ctx context.Context, cmd string, args []string) (quit bool) {
	switch cmd {
	case "playlists", "pl":
		c.printPlaylists()
	case "tracks", "t":
		c.printTracks(args)
	case "play":
		c.runIndexed(args, "play <playlist>", c.seq.SelectPlaylist)
	case "select", "sel":
		c.runIndexed(args, "select <track>", c.seq.SelectTrack)
	case "next", "n":
		c.reportErr(c.seq.Advance(sequencer.Next))
	case "prev", "p":
		c.reportErr(c.seq.Advance(sequencer.Previous))
	case "pause", "toggle":
		fmt.Printf("%s\n", c.seq.TogglePlayPause())
	case "seek":
		c.seek(args)
	case "queue", "q":
		c.printQueue()
	case "enqueue", "enq":
		c.enqueue(args)
	case "dequeue", "deq":
		c.runIndexed(args, "dequeue <position>", c.seq.DequeueAt)
	case "status", "st":
		c.printStatus()
	case "load":
		c.load(ctx, args)
	case "help", "?":
		c.printHelp()
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command %q (try 'help')\n", cmd)
	}
	return false
}

func (c *console) printPlaylists() {
	playlists := c.lib.Playlists()
	if len(playlists) == 0 {
		fmt.Println("no playlists loaded")
		return
	}
	for i, pl := range playlists {
		fmt.Printf("%3d  %s (%d tracks)\n", i, pl.Name, pl.Len())
	}
}

func (c *console) printTracks(args []string) {
	index := c.seq.Selection().Playlist
	if len(args) > 0 {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("usage: tracks [playlist]")
			return
		}
		index = i
	}
	if index < 0 {
		fmt.Println("no playlist selected")
		return
	}

	pl, err := c.lib.Playlist(index)
	if err != nil {
		c.reportErr(err)
		return
	}
	for i, name := range pl.TrackNames() {
		fmt.Printf("%3d  %s\n", i, name)
	}
}

// runIndexed parses a single integer argument and applies fn to it.
func (c *console) runIndexed(args []string, usage string, fn func(int) error) {
	if len(args) != 1 {
		fmt.Printf("usage: %s\n", usage)
		return
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("usage: %s\n", usage)
		return
	}
	c.reportErr(fn(i))
}

func (c *console) seek(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: seek <seconds>")
		return
	}
	seconds, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println("usage: seek <seconds>")
		return
	}
	c.seq.Seek(seconds)
}

func (c *console) printQueue() {
	entries := c.seq.QueueEntries()
	if len(entries) == 0 {
		fmt.Println("queue is empty")
		return
	}
	for i, e := range entries {
		name := "?"
		if tr, err := c.lib.Resolve(e.Playlist, e.Track); err == nil {
			name = tr.Name
		}
		fmt.Printf("%3d  %s (playlist %d, track %d)\n", i, name, e.Playlist, e.Track)
	}
}

func (c *console) enqueue(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: enqueue <playlist> <track>")
		return
	}
	p, err1 := strconv.Atoi(args[0])
	t, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("usage: enqueue <playlist> <track>")
		return
	}
	pos, err := c.seq.Enqueue(p, t)
	if err != nil {
		c.reportErr(err)
		return
	}
	fmt.Printf("queued at position %d\n", pos)
}

func (c *console) printStatus() {
	sel := c.seq.Selection()
	fmt.Printf("status: %s\n", c.seq.Status())
	if sel.IsNone() {
		fmt.Println("no selection")
		return
	}
	if tr, ok := c.seq.CurrentTrack(); ok {
		fmt.Printf("track: %s (playlist %d, track %d)\n", tr.Name, sel.Playlist, sel.Track)
	}
	if dur := c.seq.Duration(); dur > 0 {
		fmt.Printf("position: %.1fs / %.1fs\n", c.seq.Position(), dur)
	} else {
		fmt.Printf("position: %.1fs\n", c.seq.Position())
	}
	fmt.Printf("queued: %d\n", len(c.seq.QueueEntries()))
}

func (c *console) load(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: load <archive>")
		return
	}
	if err := loadArchive(ctx, c.reader, c.seq, args[0]); err != nil {
		c.reportErr(err)
	}
}

func (c *console) printHelp() {
	fmt.Print(`commands:
  playlists            list loaded playlists
  tracks [p]           list tracks of playlist p (default: selected)
  play <p>             select playlist p and start at its first track
  select <t>           jump to track t in the selected playlist
  pause                toggle play/pause
  next / prev          step through the selected playlist (wraps)
  seek <seconds>       jump within the current track
  enqueue <p> <t>      queue a track for playback after the current one
  dequeue <pos>        remove a queue entry
  queue                show pending queue entries
  status               show playback state
  load <archive>       load another archive as a playlist
  quit                 exit
`)
}

func (c *console) reportErr(err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// playlistName derives a playlist name from the archive path.
func playlistName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
