package core

import "fmt"

/**
 * @brief Hands out small integer ids to owners, reusing released slots first.
 * Not safe for concurrent use; systems own one pool each.
 */
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	return &IdentifierPool{owners: make([]interface{}, 0, capacity)}
}

// Acquire returns the first free id and records owner against it.
func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	for i := range p.owners {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}

	// No free slot, so the new id is the old length.
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

// Owner returns whatever was registered under id, or nil.
func (p *IdentifierPool) Owner(id uint32) interface{} {
	if int(id) >= len(p.owners) {
		return nil
	}
	return p.owners[id]
}

func (p *IdentifierPool) Release(id uint32) error {
	if int(id) >= len(p.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, len(p.owners))
	}
	if p.owners[id] == nil {
		return fmt.Errorf("identifier release: id '%d' is not in use. Nothing was done", id)
	}
	p.owners[id] = nil
	return nil
}

// InUse reports how many ids are currently held.
func (p *IdentifierPool) InUse() int {
	n := 0
	for _, o := range p.owners {
		if o != nil {
			n++
		}
	}
	return n
}
