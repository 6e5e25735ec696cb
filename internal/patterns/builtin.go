package patterns

// Builtin flag formats seen across CTF events. The 1-200 length bound and
// the newline/brace exclusion keep matches from running across binary noise
// in packed bitplane streams.
var builtin = Set{
	MustCompile("flag_brace", `flag\{[^}\r\n]{1,200}\}`),
	MustCompile("ctf_brace", `ctf\{[^}\r\n]{1,200}\}`),
	MustCompile("picoctf", `picoCTF\{[^}\r\n]{1,200}\}`),
	MustCompile("htb", `HTB\{[^}\r\n]{1,200}\}`),
}

// Default returns a copy of the builtin pattern set. Callers append their
// own compiled patterns to the copy; the builtin list itself is never
// handed out mutable.
func Default() Set {
	out := make(Set, len(builtin))
	copy(out, builtin)
	return out
}
