// Package rsrctest builds resource forks for tests.
package rsrctest

import "encoding/binary"

// Resource is one resource to store.
type Resource struct {
	Type string
	ID   int16
	Name string
	Data []byte
}

// Build lays out a resource fork holding res. Types keep the order of
// their first appearance.
func Build(res ...Resource) []byte {
	var types []string
	byType := map[string][]Resource{}
	for _, r := range res {
		if _, ok := byType[r.Type]; !ok {
			types = append(types, r.Type)
		}
		byType[r.Type] = append(byType[r.Type], r)
	}

	// data area
	var data []byte
	offsets := map[*Resource]uint32{}
	for i := range res {
		offsets[&res[i]] = uint32(len(data))
		data = binary.BigEndian.AppendUint32(data, uint32(len(res[i].Data)))
		data = append(data, res[i].Data...)
	}

	// name list
	var names []byte
	nameOff := map[*Resource]uint16{}
	for i := range res {
		if res[i].Name == "" {
			continue
		}
		nameOff[&res[i]] = uint16(len(names))
		names = append(names, byte(len(res[i].Name)))
		names = append(names, res[i].Name...)
	}

	// type list and references
	typeList := binary.BigEndian.AppendUint16(nil, uint16(len(types)-1))
	refStart := 2 + 8*len(types)
	var refs []byte
	for _, tp := range types {
		typeList = append(typeList, tp...)
		typeList = binary.BigEndian.AppendUint16(typeList, uint16(len(byType[tp])-1))
		typeList = binary.BigEndian.AppendUint16(typeList, uint16(refStart+len(refs)))
		for i := range res {
			r := &res[i]
			if r.Type != tp {
				continue
			}
			refs = binary.BigEndian.AppendUint16(refs, uint16(r.ID))
			if off, ok := nameOff[r]; ok {
				refs = binary.BigEndian.AppendUint16(refs, off)
			} else {
				refs = binary.BigEndian.AppendUint16(refs, 0xFFFF)
			}
			off := offsets[r]
			refs = append(refs, 0, byte(off>>16), byte(off>>8), byte(off))
			refs = append(refs, 0, 0, 0, 0)
		}
	}

	const dataOff = 256
	mapBody := make([]byte, 28)
	binary.BigEndian.PutUint16(mapBody[24:], 28)
	binary.BigEndian.PutUint16(mapBody[26:], uint16(28+len(typeList)+len(refs)))
	mapBody = append(mapBody, typeList...)
	mapBody = append(mapBody, refs...)
	mapBody = append(mapBody, names...)

	out := make([]byte, dataOff)
	mapOff := dataOff + len(data)
	binary.BigEndian.PutUint32(out[0:], dataOff)
	binary.BigEndian.PutUint32(out[4:], uint32(mapOff))
	binary.BigEndian.PutUint32(out[8:], uint32(len(data)))
	binary.BigEndian.PutUint32(out[12:], uint32(len(mapBody)))
	out = append(out, data...)
	return append(out, mapBody...)
}
