// Package opener turns navigation intents into pages opened in a browser.
package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
)

// ErrNoPath is returned when an intent has nothing to open
var ErrNoPath = errors.New("nothing to open")

// startFunc starts a command without waiting for it
type startFunc func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// Opener opens site paths in the configured browser or the system default
type Opener struct {
	site    *url.URL
	command string   // configured browser, empty for system default
	args    []string // additional arguments for the browser
	goos    string
	start   startFunc
	logger  zerolog.Logger
}

// New creates an Opener rooted at siteURL
func New(siteURL, command string, args []string, logger zerolog.Logger) (*Opener, error) {
	site, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if site.Scheme == "" || site.Host == "" {
		return nil, fmt.Errorf("site url %q must be absolute", siteURL)
	}
	site.Path = strings.TrimSuffix(site.Path, "/")

	return &Opener{
		site:    site,
		command: command,
		args:    args,
		goos:    runtime.GOOS,
		start:   startCommand,
		logger:  logger.With().Str("component", "opener").Logger(),
	}, nil
}

// URL resolves a site path to an absolute URL
func (o *Opener) URL(path string) string {
	u := *o.site
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path += path
	return u.String()
}

// Open launches the page for path. The browser is started and not waited on.
func (o *Opener) Open(path string) error {
	if path == "" {
		return ErrNoPath
	}
	target := o.URL(path)

	if o.command != "" {
		args := append(append([]string{}, o.args...), target)
		o.logger.Info().Str("command", o.command).Strs("args", args).Msg("opening with configured browser")
		if err := o.start(o.command, args...); err != nil {
			return fmt.Errorf("start %s: %w", o.command, err)
		}
		return nil
	}

	name, args := systemDefault(o.goos, target)
	o.logger.Info().Str("os", o.goos).Str("url", target).Msg("opening with system default")
	if err := o.start(name, args...); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

func systemDefault(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// TopicIntent is the path for selecting a topic row
func TopicIntent(t domain.Topic) string {
	return domain.TopicPath(t.ID)
}

// UserIntent is the path for selecting a topic's author
func UserIntent(t domain.Topic) string {
	if t.User.Login == "" {
		return ""
	}
	return domain.UserPath(t.User.Login)
}

// NodeIntent is the path for selecting a topic's node. Inside a list that is
// already scoped to a node it opens the topic instead.
func NodeIntent(filter domain.Filter, t domain.Topic) string {
	if filter.HasNode() || t.NodeID <= 0 {
		return TopicIntent(t)
	}
	return domain.NodePath(t.NodeID)
}
