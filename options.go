package biobox

// loadOptions holds configuration accumulated by the fluent Loader.
type loadOptions struct {
	// model is the 1-indexed conformation to select; 0 means the first.
	model int

	// heavyOnly drops hydrogen atoms after loading.
	heavyOnly bool

	// chains restricts the molecule to these chain identifiers.
	// Multiple calls are cumulative; nil means all chains.
	chains []string
}

// defaultLoadOptions returns the default loading options.
func defaultLoadOptions() loadOptions {
	return loadOptions{
		model:     0,
		heavyOnly: false,
		chains:    nil,
	}
}

// clone creates a deep copy of loadOptions.
func (o loadOptions) clone() loadOptions {
	newOpts := loadOptions{
		model:     o.model,
		heavyOnly: o.heavyOnly,
	}

	if o.chains != nil {
		newOpts.chains = make([]string, len(o.chains))
		copy(newOpts.chains, o.chains)
	}

	return newOpts
}
