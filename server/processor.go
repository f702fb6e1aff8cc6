package server

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"listq/config"
	"listq/types"
)

// Processor applies commands to a registry of named lists. It is safe for
// concurrent use; the lists themselves are only touched under dataMux.
type Processor struct {
	data    *types.Registry
	dataMux sync.RWMutex
	maxSize int
}

// NewProcessor returns a Processor whose lists hold at most maxSize elements.
// A non-positive maxSize means config.DefaultMaxListSize.
func NewProcessor(maxSize int) *Processor {
	if maxSize <= 0 {
		maxSize = config.DefaultMaxListSize
	}
	return &Processor{
		data:    types.NewRegistry(),
		maxSize: maxSize,
	}
}

// Process runs cmd and describes the outcome. Failures are reported in
// Reply.Error; the list is left unchanged in that case.
func (p *Processor) Process(cmd *types.Command) types.Reply {
	reply := types.Reply{
		ID:     cmd.ID,
		List:   cmd.List,
		Action: cmd.Action,
	}
	result, size, err := p.apply(cmd)
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	reply.Result = result
	reply.Size = size
	return reply
}

func (p *Processor) apply(cmd *types.Command) (result string, size int, err error) {
	if cmd.List == "" {
		return "", 0, types.ErrMissingList
	}

	switch cmd.Action {
	case types.Front, types.Back, types.Size, types.Show:
		p.dataMux.RLock()
		defer p.dataMux.RUnlock()
		list, ok := p.data.Get(cmd.List)
		if !ok {
			return "", 0, errors.Wrap(types.ErrNoSuchList, cmd.List)
		}
		result, err = read(list, cmd.Action)
		return result, list.Len(), err

	case types.PushBack, types.PushFront, types.Assign, types.Resize:
		p.dataMux.Lock()
		defer p.dataMux.Unlock()
		if err := p.checkGrowth(cmd); err != nil {
			return "", 0, err
		}
		list, _ := p.data.GetOrCreate(cmd.List)
		grow(list, cmd)
		return list.String(), list.Len(), nil

	case types.PopFront, types.PopBack, types.Remove, types.Unique, types.Reverse, types.Clear:
		p.dataMux.Lock()
		defer p.dataMux.Unlock()
		list, ok := p.data.Get(cmd.List)
		if !ok {
			return "", 0, errors.Wrap(types.ErrNoSuchList, cmd.List)
		}
		return shrink(list, cmd), list.Len(), nil

	case types.Drop:
		p.dataMux.Lock()
		defer p.dataMux.Unlock()
		return strconv.FormatBool(p.data.Drop(cmd.List)), 0, nil

	default:
		return "", 0, errors.Wrap(types.ErrUnknownAction, cmd.Action)
	}
}

func read(list *types.List[string], action string) (string, error) {
	switch action {
	case types.Front:
		return list.Front()
	case types.Back:
		return list.Back()
	case types.Size:
		return strconv.Itoa(list.Len()), nil
	default:
		return list.String(), nil
	}
}

// checkGrowth rejects a growing command before it touches the registry, so
// a rejected command neither creates nor changes a list.
func (p *Processor) checkGrowth(cmd *types.Command) error {
	current := 0
	if list, ok := p.data.Get(cmd.List); ok {
		current = list.Len()
	}

	size := current
	switch cmd.Action {
	case types.PushBack, types.PushFront:
		if cmd.Value == "" && len(cmd.Values) == 0 {
			return errors.Wrap(types.ErrMissingValue, cmd.Action)
		}
		size += len(values(cmd))
	case types.Assign:
		size = len(cmd.Values)
	case types.Resize:
		size = cmd.N
	}
	if size > p.maxSize {
		return errors.Wrapf(types.ErrTooLarge, "%s would hold %d elements, limit %d", cmd.List, size, p.maxSize)
	}
	return nil
}

// grow handles the actions that may create the list.
func grow(list *types.List[string], cmd *types.Command) {
	switch cmd.Action {
	case types.PushBack:
		for _, v := range values(cmd) {
			list.PushBack(v)
		}
	case types.PushFront:
		for _, v := range values(cmd) {
			list.PushFront(v)
		}
	case types.Assign:
		list.Assign(cmd.Values...)
	case types.Resize:
		if cmd.Value != "" {
			list.ResizeWith(cmd.N, cmd.Value)
		} else {
			list.Resize(cmd.N)
		}
	}
}

func shrink(list *types.List[string], cmd *types.Command) string {
	switch cmd.Action {
	case types.PopFront:
		v, _ := list.PopFront()
		return v
	case types.PopBack:
		v, _ := list.PopBack()
		return v
	case types.Remove:
		return strconv.Itoa(list.Remove(cmd.Value))
	case types.Unique:
		return strconv.Itoa(list.Unique())
	case types.Reverse:
		list.Reverse()
	case types.Clear:
		list.Clear()
	}
	return list.String()
}

// values returns Values when set, Value otherwise. An empty string is pushed
// only when listed explicitly in Values.
func values(cmd *types.Command) []string {
	if len(cmd.Values) > 0 {
		return cmd.Values
	}
	return []string{cmd.Value}
}
