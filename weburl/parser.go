package weburl

import "strings"

const defaultProtocol = "http:"

// parser reads raw strictly left to right. Each step claims a span starting
// at pos and advances pos past it (and past any delimiter it consumes), so
// no step ever sees bytes an earlier step claimed.
type parser struct {
	raw string
	pos int
}

func (p *parser) rest() string {
	return p.raw[p.pos:]
}

// take returns the next n bytes and advances past them.
func (p *parser) take(n int) string {
	s := p.raw[p.pos : p.pos+n]
	p.pos += n
	return s
}

func (p *parser) skip(n int) {
	p.pos += n
}

func (p *parser) protocol() string {
	i := strings.Index(p.rest(), "//")
	if i < 0 {
		return defaultProtocol
	}

	protocol := p.take(i)
	p.skip(len("//"))

	return protocol
}

// username claims the text before the first ':' that precedes an '@'.
// Without such a colon the whole span up to '@' belongs to password.
func (p *parser) username() (string, bool) {
	rest := p.rest()
	at := strings.IndexByte(rest, '@')
	if at < 0 {
		return "", false
	}

	colon := strings.IndexByte(rest[:at], ':')
	if colon < 0 {
		return "", false
	}

	username := p.take(colon)
	p.skip(len(":"))

	return username, true
}

func (p *parser) password() (string, bool) {
	at := strings.IndexByte(p.rest(), '@')
	if at < 0 {
		return "", false
	}

	password := p.take(at)
	p.skip(len("@"))

	return password, true
}

// hostname stops before the first ':', else before the first '/'. With
// neither present it claims everything left, so later steps see an empty
// buffer and fall back to their defaults.
func (p *parser) hostname() string {
	rest := p.rest()
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		return p.take(i)
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return p.take(i)
	}

	return p.take(len(rest))
}

func (p *parser) port() (string, bool) {
	if !strings.HasPrefix(p.rest(), ":") {
		return "", false
	}
	p.skip(len(":"))

	end := strings.IndexAny(p.rest(), "/?#")
	if end < 0 {
		end = len(p.rest())
	}

	return p.take(end), true
}

func (p *parser) pathname() string {
	if !strings.HasPrefix(p.rest(), "/") {
		return "/"
	}

	end := strings.IndexAny(p.rest(), "?#")
	if end < 0 {
		end = len(p.rest())
	}

	return p.take(end)
}

// search returns the query substring without its leading '?'.
func (p *parser) search() string {
	if !strings.HasPrefix(p.rest(), "?") {
		return ""
	}
	p.skip(len("?"))

	end := strings.IndexByte(p.rest(), '#')
	if end < 0 {
		end = len(p.rest())
	}

	return p.take(end)
}

func (p *parser) hash() (string, bool) {
	if !strings.HasPrefix(p.rest(), "#") {
		return "", false
	}

	return p.take(len(p.rest())), true
}

// parse runs every step in order and fills u, overwriting all of its fields.
func parse(u *URL, raw string) {
	p := parser{raw: raw}

	u.protocol = p.protocol()

	username, hasUsername := p.username()
	password, hasPassword := p.password()
	u.username = optional{value: username, ok: hasUsername}
	u.password = optional{value: password, ok: hasPassword}

	u.hostname = p.hostname()

	port, hasPort := p.port()
	u.port = optional{value: port, ok: hasPort}

	u.pathname = p.pathname()
	u.search = NewSearchParams(p.search())

	hash, hasHash := p.hash()
	u.hash = optional{value: hash, ok: hasHash}
}
