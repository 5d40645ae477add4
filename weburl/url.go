package weburl

import "strings"

// optional is a string that may be absent. The zero value is absent.
type optional struct {
	value string
	ok    bool
}

func (o optional) get() (string, bool) {
	return o.value, o.ok
}

func present(v string) optional {
	return optional{value: v, ok: true}
}

// URL is a decomposed URL. Every field is always populated: components
// missing from the parsed input hold their default or are marked absent.
//
// Setters do not validate against other fields, so a URL can hold
// combinations parsing would never produce, such as a port without a
// hostname.
type URL struct {
	protocol string
	username optional
	password optional
	hostname string
	port     optional
	pathname string
	search   *SearchParams
	hash     optional
}

// New parses raw into a URL. It never fails; see the package documentation
// for the defaults applied to missing components.
func New(raw string) *URL {
	var u URL
	parse(&u, raw)

	return &u
}

// Href reassembles the URL. For any string New can fully decompose,
// New(s).Href() == s.
func (u *URL) Href() string {
	var b strings.Builder

	b.WriteString(u.protocol)
	b.WriteString("//")

	if username, ok := u.username.get(); ok {
		b.WriteString(username)
		if password, ok := u.password.get(); ok {
			b.WriteByte(':')
			b.WriteString(password)
		}
		b.WriteByte('@')
	}

	b.WriteString(u.hostname)
	if port, ok := u.port.get(); ok {
		b.WriteByte(':')
		b.WriteString(port)
	}

	b.WriteString(u.pathname)
	b.WriteString(u.Search())

	if hash, ok := u.hash.get(); ok {
		b.WriteString(hash)
	}

	return b.String()
}

// SetHref re-parses href and replaces every component of u.
func (u *URL) SetHref(href string) {
	parse(u, href)
}

// String implements fmt.Stringer and returns Href.
func (u *URL) String() string {
	return u.Href()
}

// MarshalText implements encoding.TextMarshaler.
func (u *URL) MarshalText() ([]byte, error) {
	return []byte(u.Href()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (u *URL) UnmarshalText(text []byte) error {
	u.SetHref(string(text))
	return nil
}

// Clone returns a deep copy of u, including its SearchParams.
func (u *URL) Clone() *URL {
	cpy := *u
	cpy.search = u.SearchParams().Clone()

	return &cpy
}

// Protocol returns the scheme with its trailing colon, e.g. "https:".
func (u *URL) Protocol() string { return u.protocol }

// SetProtocol replaces the protocol. The value is stored verbatim.
func (u *URL) SetProtocol(protocol string) { u.protocol = protocol }

// Username returns the username and whether one is present.
func (u *URL) Username() (string, bool) { return u.username.get() }

// SetUsername sets the username, marking it present.
func (u *URL) SetUsername(username string) { u.username = present(username) }

// Password returns the password and whether one is present. A password is
// only serialized when a username is present too.
func (u *URL) Password() (string, bool) { return u.password.get() }

// SetPassword sets the password, marking it present.
func (u *URL) SetPassword(password string) { u.password = present(password) }

// ClearCredentials removes both username and password.
func (u *URL) ClearCredentials() {
	u.username = optional{}
	u.password = optional{}
}

// Hostname returns the host without its port. It may be empty.
func (u *URL) Hostname() string { return u.hostname }

// SetHostname replaces the hostname.
func (u *URL) SetHostname(hostname string) { u.hostname = hostname }

// Port returns the port and whether one is present.
func (u *URL) Port() (string, bool) { return u.port.get() }

// SetPort sets the port, marking it present.
func (u *URL) SetPort(port string) { u.port = present(port) }

// ClearPort removes the port.
func (u *URL) ClearPort() { u.port = optional{} }

// Pathname returns the path, which is "/" when the input had none.
func (u *URL) Pathname() string { return u.pathname }

// SetPathname replaces the path.
func (u *URL) SetPathname(pathname string) { u.pathname = pathname }

// Hash returns the fragment including its leading '#', and whether one is
// present.
func (u *URL) Hash() (string, bool) { return u.hash.get() }

// SetHash sets the fragment verbatim; callers include the leading '#'.
func (u *URL) SetHash(hash string) { u.hash = present(hash) }

// ClearHash removes the fragment.
func (u *URL) ClearHash() { u.hash = optional{} }

// SearchParams returns the query store owned by u. Mutations through it
// are reflected in Href.
func (u *URL) SearchParams() *SearchParams {
	if u.search == nil {
		u.search = NewSearchParams("")
	}

	return u.search
}

// Search returns "?" followed by the serialized query, or "" when the
// query is empty.
func (u *URL) Search() string {
	if u.search == nil || u.search.Len() == 0 {
		return ""
	}

	return "?" + u.search.String()
}

// Host returns the hostname followed by ":port" when a port is present.
func (u *URL) Host() string {
	if port, ok := u.port.get(); ok {
		return u.hostname + ":" + port
	}

	return u.hostname
}

// RequestTarget returns the pathname followed by Search, the form used in
// an HTTP request line.
func (u *URL) RequestTarget() string {
	return u.pathname + u.Search()
}
