package modules

// Catalog returns the built-in modules in their default load order.
func Catalog() []Module {
	return []Module{
		Core(),
		Arith1(),
		Relation1(),
		Logic1(),
		Set1(),
		Integer1(),
		Fns(),
		Keywords(),
	}
}

// Names lists the built-in module names in load order.
func Names() []string {
	catalog := Catalog()
	names := make([]string, len(catalog))
	for i, m := range catalog {
		names[i] = m.Name()
	}
	return names
}

// Lookup finds a built-in module by name.
func Lookup(name string) (Module, bool) {
	for _, m := range Catalog() {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}
