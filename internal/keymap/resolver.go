package keymap

// Resolver maps key strings to actions. Bindings of the focused context
// shadow global and playback bindings.
type Resolver struct {
	byContext map[string]map[string]Action
	byAction  map[Action][]string // action -> keys (for help)
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		byContext: make(map[string]map[string]Action),
		byAction:  make(map[Action][]string),
	}
	for _, b := range bindings {
		keys := r.byContext[b.Context]
		if keys == nil {
			keys = make(map[string]Action)
			r.byContext[b.Context] = keys
		}
		for _, key := range b.Keys {
			keys[key] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action for key in context, or "" if not bound.
// The prompt context only sees its own bindings so typed text is not
// interpreted as commands.
func (r *Resolver) Resolve(context, key string) Action {
	if a, ok := r.byContext[context][key]; ok {
		return a
	}
	if context == ContextPrompt {
		return ""
	}
	if a, ok := r.byContext[ContextGlobal][key]; ok {
		return a
	}
	return r.byContext[ContextPlayback][key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
