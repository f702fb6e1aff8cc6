package types

// Registry holds named string lists in creation order.
type Registry struct {
	dict  map[string]*List[string]
	order List[string]
}

func NewRegistry() *Registry {
	return &Registry{
		dict: make(map[string]*List[string]),
	}
}

// GetOrCreate returns the list called name, creating an empty one if needed.
// created reports whether the list is new.
func (r *Registry) GetOrCreate(name string) (list *List[string], created bool) {
	if list, ok := r.dict[name]; ok {
		return list, false
	}

	list = New[string]()
	r.dict[name] = list
	r.order.PushBack(name)
	return list, true
}

func (r *Registry) Get(name string) (list *List[string], ok bool) {
	list, ok = r.dict[name]
	return
}

// Drop forgets the list called name.
func (r *Registry) Drop(name string) (didDrop bool) {
	list, ok := r.dict[name]
	if ok {
		list.Clear()
		r.order.Remove(name)
		delete(r.dict, name)
	}

	return ok
}

// Names returns list names in creation order.
func (r *Registry) Names() []string {
	return r.order.Values()
}

func (r *Registry) Len() int {
	return len(r.dict)
}
