package vol

import (
	"testing"

	"emperror.dev/errors"
	"github.com/go-test/deep"

	"github.com/voltree-archive/voltree/pkg/handle"
)

func TestLocValidate(t *testing.T) {
	valid := []*Loc{
		SelfLoc(handle.KindFile),
		NameLoc(handle.KindGroup, "a/b/c", nil),
		NameLoc(handle.KindGroup, "", nil),
		IndexLoc(handle.KindGroup, "sub", IndexCreationOrder, OrderDecreasing, 3, nil),
		RefLoc(handle.KindDataset, RefObject, []byte{0x01}, nil),
	}
	for i, loc := range valid {
		if err := loc.Validate(); err != nil {
			t.Errorf("valid location %d rejected - %v", i, err)
		}
	}

	invalid := []*Loc{
		nil,
		{Type: 99, ObjType: handle.KindGroup},
		{Type: LocIndex, ObjType: handle.KindGroup, IdxKind: 77},
		{Type: LocIndex, ObjType: handle.KindGroup, Order: 77},
		{Type: LocRef, ObjType: handle.KindGroup},
	}
	for i, loc := range invalid {
		if err := loc.Validate(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("invalid location %d accepted (%v)", i, err)
		}
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	ref := &Reference{
		Type: RefRegion,
		Path: "/data/temperature",
		Sel:  Selection{Offset: []uint64{10}, Count: []uint64{20}},
	}
	data, err := ref.Encode()
	if err != nil {
		t.Fatalf("cannot encode reference - %v", err)
	}
	got, err := DecodeReference(data)
	if err != nil {
		t.Fatalf("cannot decode reference - %v", err)
	}
	if diff := deep.Equal(ref, got); diff != nil {
		t.Errorf("reference round trip differs: %v", diff)
	}
	if _, err := DecodeReference([]byte("not cbor at all")); err == nil {
		t.Errorf("garbage reference decoded")
	}
}
