// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package devstack

// Stack is an ordered chain: one communicator, zero or more protocols, one
// device (§2, glossary). It is built bottom-up by Build and remembers the
// chain only so Open/Close can be driven from the top and so diagnostics
// can walk the whole chain; the actual up/down links live in each layer's
// embedded Base, not here.
type Stack struct {
	layers []Layer // bottom-up: layers[0] is the communicator
}

// Build assembles a Stack from layers supplied bottom-up (communicator
// first, device last). It does not wire them -- each layer must already
// have been wired to the layer below it with Base.SetLower before Build is
// called, per §3's "layers are constructed bottom-up; each ctor captures
// its lower and registers itself as upper".
func Build(layersBottomUp ...Layer) *Stack {
	return &Stack{layers: layersBottomUp}
}

// Top returns the top-most layer (the device), or nil for an empty stack.
func (s *Stack) Top() Layer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[len(s.layers)-1]
}

// Bottom returns the bottom-most layer (the communicator), or nil for an
// empty stack.
func (s *Stack) Bottom() Layer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[0]
}

// Open opens the stack for id by opening the top layer, which cascades
// downward through each layer's own Open/OpenLower call per §3. Failure of
// any lower layer halts the cascade and is returned here unchanged.
func (s *Stack) Open(id EID) error {
	top := s.Top()
	if top == nil {
		return nil
	}
	return top.Open(id)
}

// Close closes the stack for id top-down: the top layer's Close tears down
// its own state first, then cascades via CloseLower. Safe to call on a
// partially-open or already-closed stack.
func (s *Stack) Close(id EID) {
	top := s.Top()
	if top == nil {
		return
	}
	top.Close(id)
}

// CloseAll closes every layer directly, bottom-up is not required since
// Close itself cascades top-down from a single entry point; CloseAll exists
// for callers that want to guarantee every layer observes Close even if the
// chain was only partially wired (e.g. a failed Build).
func (s *Stack) CloseAll(id EID) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		s.layers[i].Close(id)
	}
}

// Layers returns the bottom-up layer chain. The returned slice must not be
// mutated.
func (s *Stack) Layers() []Layer {
	return s.layers
}
