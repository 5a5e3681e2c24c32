package tcaws

import "strings"

// CleanKey normalizes an object key.
// It collapses every run of consecutive slashes into a single slash and then
// removes one leading slash. An empty key is returned unchanged.
//
// The result never starts with "/" and never contains "//", and
// CleanKey(CleanKey(k)) == CleanKey(k) for every k.
func CleanKey(key string) string {
	if key == "" {
		return key
	}

	if strings.Contains(key, "//") {
		var b strings.Builder
		b.Grow(len(key))
		prevSlash := false
		for i := 0; i < len(key); i++ {
			c := key[i]
			if c == '/' && prevSlash {
				continue
			}
			prevSlash = c == '/'
			b.WriteByte(c)
		}
		key = b.String()
	}

	return strings.TrimPrefix(key, "/")
}

// JoinRoot prefixes path with root and a slash. An empty root leaves path unchanged.
func JoinRoot(root, path string) string {
	if root == "" {
		return path
	}
	return root + "/" + path
}

// Unquote percent-decodes s. Unlike url.PathUnescape it never fails:
// malformed escapes are kept as they are, and '+' stays a plus sign.
func Unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
