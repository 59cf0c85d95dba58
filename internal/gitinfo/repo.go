// Package gitinfo derives a stable repository identity for the directory a
// hook fired in. Identity means the normalized origin remote in
// "host/owner/repo" form; it tags persisted records so prompts and outputs
// from different checkouts of the same project group together.
package gitinfo

import (
	"context"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

// resolveTimeout bounds the git subprocess. Remote lookups read local config
// only, so anything slower than this means a wedged filesystem.
const resolveTimeout = 5 * time.Second

// Resolve returns the normalized origin remote for dir, or "" when dir is not
// a git work tree, has no origin, or the remote URL carries no usable host.
// Failures are logged at debug level and swallowed: repository identity is
// optional context, never a reason to drop a record.
func Resolve(ctx context.Context, dir string) string {
	if dir == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		slog.Debug("git remote lookup failed", "dir", dir, "error", err)
		return ""
	}
	return NormalizeRemoteURL(string(out))
}

// NormalizeRemoteURL reduces a git remote URL to "host/path". It accepts the
// common remote spellings (scp-like git@host:path, http(s), ssh, git
// schemes), strips credentials, ports, a trailing ".git" and trailing
// slashes, and preserves nested group paths. Local paths, file:// remotes and
// anything without a recognizable host normalize to "".
//
// The function is idempotent: its own output ("host/path" with a dotted host)
// passes through unchanged.
func NormalizeRemoteURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if !strings.Contains(s, "://") {
		if host, path, ok := splitSCPLike(s); ok {
			return joinHostPath(host, path)
		}
		return normalizeBare(s)
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "ssh", "git":
	default:
		// file:// and exotic schemes do not name a hosted repository.
		return ""
	}
	return joinHostPath(u.Hostname(), u.Path)
}

// splitSCPLike recognizes the scp-like syntax [user@]host:path used by ssh
// remotes. The colon must come before any slash, otherwise the string is a
// path that happens to contain a colon.
func splitSCPLike(s string) (host, path string, ok bool) {
	colon := strings.Index(s, ":")
	if colon <= 0 {
		return "", "", false
	}
	if slash := strings.Index(s, "/"); slash != -1 && slash < colon {
		return "", "", false
	}
	host = s[:colon]
	if at := strings.LastIndex(host, "@"); at != -1 {
		host = host[at+1:]
	}
	return host, s[colon+1:], true
}

// normalizeBare handles input that is neither a URL nor scp-like. Output of a
// previous normalization ("github.com/acme/widgets") is the one bare form we
// accept; filesystem paths are rejected.
func normalizeBare(s string) string {
	switch {
	case strings.HasPrefix(s, "/"), strings.HasPrefix(s, "."), strings.HasPrefix(s, "~"):
		return ""
	}
	host, path, found := strings.Cut(s, "/")
	if !found || !strings.Contains(host, ".") {
		return ""
	}
	return joinHostPath(host, path)
}

func joinHostPath(host, path string) string {
	host = strings.TrimSpace(host)
	path = strings.Trim(strings.TrimSpace(path), "/")
	path = strings.TrimSuffix(path, ".git")
	path = strings.Trim(path, "/")
	if host == "" || path == "" {
		return ""
	}
	return host + "/" + path
}
