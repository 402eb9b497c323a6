package redlock

// Resource names the keyset a lock protects. A multi-key resource is
// indivisible: either every key is acquired on a server or none of them
// count toward that server's vote.
type Resource struct {
	keys []string
}

// Key builds a single-key Resource.
func Key(name string) Resource {
	return Resource{keys: []string{name}}
}

// Keys builds a multi-key Resource. The order of names is preserved and
// passed verbatim as the script's KEYS list.
func Keys(names ...string) Resource {
	cp := make([]string, len(names))
	copy(cp, names)
	return Resource{keys: cp}
}

// Names returns the resource's key list.
func (r Resource) Names() []string {
	return r.keys
}

func (r Resource) String() string {
	if len(r.keys) == 1 {
		return r.keys[0]
	}
	s := "["
	for i, k := range r.keys {
		if i > 0 {
			s += ","
		}
		s += k
	}
	return s + "]"
}
