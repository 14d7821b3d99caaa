// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// SlotKind is the role of a kernel argument slot.
type SlotKind uint8

const (
	// SlotInput is a var<storage, read> array.
	SlotInput SlotKind = iota
	// SlotOutput is a var<storage, read_write> array.
	SlotOutput
	// SlotScalar is a var<uniform> scalar.
	SlotScalar
)

func (k SlotKind) String() string {
	switch k {
	case SlotInput:
		return "input buffer"
	case SlotOutput:
		return "output buffer"
	case SlotScalar:
		return "scalar"
	default:
		return fmt.Sprintf("SlotKind(%d)", uint8(k))
	}
}

// Slot describes one positional kernel argument.
type Slot struct {
	// Index is the argument position used by Kernel.SetArg.
	Index int

	// Binding is the @binding number in bind group 0.
	Binding uint32

	// Name is the WGSL variable name.
	Name string

	Kind SlotKind
	Elem ElemType

	// Len is the fixed array length, or 0 for runtime-sized arrays and scalars.
	Len int
}

func (s Slot) String() string {
	return fmt.Sprintf("%d:%s (%s %s)", s.Index, s.Name, s.Elem, s.Kind)
}

// parseModule runs the naga front end and validator over WGSL source.
func parseModule(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, &CompileError{Stage: "parse", Diagnostic: err.Error()}
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, &CompileError{Stage: "lower", Diagnostic: err.Error()}
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, &CompileError{Stage: "validate", Diagnostic: err.Error()}
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i := range verrs {
			msgs[i] = verrs[i].Error()
		}
		return nil, &CompileError{Stage: "validate", Diagnostic: strings.Join(msgs, "\n")}
	}
	return module, nil
}

// reflectSlots derives the positional argument slots from the module's
// bound globals, ordered by binding number.
func reflectSlots(module *ir.Module) ([]Slot, error) {
	var slots []Slot
	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		if gv.Binding.Group != 0 {
			return nil, &CompileError{
				Stage:      "reflect",
				Diagnostic: fmt.Sprintf("%s: only @group(0) is supported, got @group(%d)", gv.Name, gv.Binding.Group),
			}
		}
		slot, err := slotFor(module, gv)
		if err != nil {
			return nil, &CompileError{Stage: "reflect", Diagnostic: err.Error()}
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Binding < slots[j].Binding
	})
	for i := range slots {
		slots[i].Index = i
		if i > 0 && slots[i].Binding == slots[i-1].Binding {
			return nil, &CompileError{
				Stage:      "reflect",
				Diagnostic: fmt.Sprintf("%s and %s share @binding(%d)", slots[i-1].Name, slots[i].Name, slots[i].Binding),
			}
		}
	}
	return slots, nil
}

func slotFor(module *ir.Module, gv ir.GlobalVariable) (Slot, error) {
	if int(gv.Type) >= len(module.Types) {
		return Slot{}, fmt.Errorf("%s: dangling type handle %d", gv.Name, gv.Type)
	}
	slot := Slot{Binding: gv.Binding.Binding, Name: gv.Name}
	inner := module.Types[gv.Type].Inner

	switch gv.Space {
	case ir.SpaceStorage:
		arr, ok := inner.(ir.ArrayType)
		if !ok {
			return Slot{}, fmt.Errorf("%s: storage arguments must be arrays of f32, i32 or u32", gv.Name)
		}
		if int(arr.Base) >= len(module.Types) {
			return Slot{}, fmt.Errorf("%s: dangling element type handle %d", gv.Name, arr.Base)
		}
		elem, err := scalarElem(module.Types[arr.Base].Inner)
		if err != nil {
			return Slot{}, fmt.Errorf("%s: %w", gv.Name, err)
		}
		slot.Elem = elem
		slot.Kind = SlotOutput
		if gv.Access == ir.StorageRead {
			slot.Kind = SlotInput
		}
		if arr.Size.Constant != nil {
			slot.Len = int(*arr.Size.Constant)
		}
	case ir.SpaceUniform:
		elem, err := scalarElem(inner)
		if err != nil {
			return Slot{}, fmt.Errorf("%s: uniform arguments must be scalars: %w", gv.Name, err)
		}
		slot.Elem = elem
		slot.Kind = SlotScalar
	default:
		return Slot{}, fmt.Errorf("%s: unsupported address space for a kernel argument", gv.Name)
	}
	return slot, nil
}

func scalarElem(inner ir.TypeInner) (ElemType, error) {
	s, ok := inner.(ir.ScalarType)
	if !ok || s.Width != elemSize {
		return ElemInvalid, fmt.Errorf("element type must be f32, i32 or u32")
	}
	switch s.Kind {
	case ir.ScalarFloat:
		return ElemFloat32, nil
	case ir.ScalarSint:
		return ElemInt32, nil
	case ir.ScalarUint:
		return ElemUint32, nil
	default:
		return ElemInvalid, fmt.Errorf("element type must be f32, i32 or u32")
	}
}

// entrySlots narrows the program's slots to the globals ep reaches,
// directly or through called functions, renumbered in binding order.
func entrySlots(module *ir.Module, ep ir.EntryPoint, slots []Slot) []Slot {
	used := usedBindings(module, &ep.Function)
	out := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		if used[slot.Binding] {
			slot.Index = len(out)
			out = append(out, slot)
		}
	}
	return out
}

// usedBindings collects the group 0 bindings referenced from entry.
func usedBindings(module *ir.Module, entry *ir.Function) map[uint32]bool {
	used := make(map[uint32]bool)
	visited := make(map[ir.FunctionHandle]bool)

	var visitFunc func(f *ir.Function)
	call := func(h ir.FunctionHandle) {
		if visited[h] || int(h) >= len(module.Functions) {
			return
		}
		visited[h] = true
		visitFunc(&module.Functions[h])
	}
	var visitBlock func(stmts []ir.Statement)
	visitBlock = func(stmts []ir.Statement) {
		for _, stmt := range stmts {
			switch st := stmt.Kind.(type) {
			case ir.StmtCall:
				call(st.Function)
			case ir.StmtBlock:
				visitBlock(st.Block)
			case ir.StmtIf:
				visitBlock(st.Accept)
				visitBlock(st.Reject)
			case ir.StmtSwitch:
				for _, c := range st.Cases {
					visitBlock(c.Body)
				}
			case ir.StmtLoop:
				visitBlock(st.Body)
				visitBlock(st.Continuing)
			}
		}
	}
	visitFunc = func(f *ir.Function) {
		for _, expr := range f.Expressions {
			gv, ok := expr.Kind.(ir.ExprGlobalVariable)
			if !ok || int(gv.Variable) >= len(module.GlobalVariables) {
				continue
			}
			if b := module.GlobalVariables[gv.Variable].Binding; b != nil && b.Group == 0 {
				used[b.Binding] = true
			}
		}
		visitBlock(f.Body)
	}

	visitFunc(entry)
	return used
}

// computeEntryPoints lists the names of the module's compute entry points.
func computeEntryPoints(module *ir.Module) []string {
	var names []string
	for _, ep := range module.EntryPoints {
		if ep.Stage == ir.StageCompute {
			names = append(names, ep.Name)
		}
	}
	return names
}

// findEntryPoint returns the compute entry point called name.
func findEntryPoint(module *ir.Module, name string) (ir.EntryPoint, bool) {
	for _, ep := range module.EntryPoints {
		if ep.Name == name && ep.Stage == ir.StageCompute {
			return ep, true
		}
	}
	return ir.EntryPoint{}, false
}
