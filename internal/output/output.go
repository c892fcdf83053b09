// Package output writes collected tweets and users to the console and to
// the files requested on the command line.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/twitter"
)

// ErrBackendUnavailable is returned for storage backends this build does not
// ship, namely databases and Elasticsearch.
var ErrBackendUnavailable = errors.New("storage backend unavailable")

// Sink receives collected records.
type Sink interface {
	Tweet(t *twitter.Tweet) error
	User(u *twitter.TwitterUser) error
	Close() error
}

// Open returns the sink chain for cfg: console lines on console, plus the
// --output file in CSV, JSON lines or text form. Times are rendered in loc.
func Open(cfg config.Config, console io.Writer, loc *time.Location) (Sink, error) {
	if config.Given(cfg.Database) {
		return nil, fmt.Errorf("%w: database %s", ErrBackendUnavailable, cfg.Database.Value())
	}
	if config.Given(cfg.Elasticsearch) {
		return nil, fmt.Errorf("%w: elasticsearch %s", ErrBackendUnavailable, cfg.Elasticsearch.Value())
	}

	f := NewFormatter(cfg, loc)
	sinks := multi{&textSink{w: console, f: f}}

	if !config.Given(cfg.Output) {
		return sinks, nil
	}
	path := cfg.Output.Value()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	switch {
	case config.On(cfg.StoreCSV):
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("stat output: %w", err)
		}
		sinks = append(sinks, newCSVSink(file, f, info.Size() > 0))
	case config.On(cfg.StoreJSON):
		sinks = append(sinks, newJSONSink(file, f))
	default:
		sinks = append(sinks, &textSink{w: file, f: f, c: file})
	}
	return sinks, nil
}

// multi fans records out to every sink and reports the first error.
type multi []Sink

func (m multi) Tweet(t *twitter.Tweet) error {
	for _, s := range m {
		if err := s.Tweet(t); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) User(u *twitter.TwitterUser) error {
	for _, s := range m {
		if err := s.User(u); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// textSink writes formatted lines. c is closed on Close when set.
type textSink struct {
	w io.Writer
	f *Formatter
	c io.Closer
}

func (s *textSink) Tweet(t *twitter.Tweet) error {
	_, err := fmt.Fprintln(s.w, s.f.Tweet(t))
	return err
}

func (s *textSink) User(u *twitter.TwitterUser) error {
	_, err := fmt.Fprintln(s.w, s.f.User(u))
	return err
}

func (s *textSink) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
