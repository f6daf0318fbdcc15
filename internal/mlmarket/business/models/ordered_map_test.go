package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOrderedMapRoundTrip(t *testing.T) {
	m := NewOrderedMap()
	m.Set("categoria_1", "Casa, Móveis e Decoração")
	m.Set("categoria_2", "Iluminação")
	m.Set("categoria_3", "Lustres")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded := NewOrderedMap()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"categoria_1", "categoria_2", "categoria_3"}
	if !reflect.DeepEqual(decoded.Keys(), want) {
		t.Fatalf("key order lost: got %v, want %v", decoded.Keys(), want)
	}
	if v, _ := decoded.Get("categoria_3"); v != "Lustres" {
		t.Fatalf("value lost: got %q", v)
	}
}

func TestOrderedMapSerializesInInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", "last letter first")
	m.Set("a", "first letter last")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"z":"last letter first","a":"first letter last"}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}

func TestOrderedMapSetOverwriteKeepsPosition(t *testing.T) {
	m := NewOrderedMap()
	m.Set("Marca", "Sindora")
	m.Set("Modelo", "SD-500")
	m.Set("Marca", "Outra")

	if got := m.Keys(); len(got) != 2 || got[0] != "Marca" {
		t.Fatalf("unexpected keys: %v", got)
	}
	if v, _ := m.Get("Marca"); v != "Outra" {
		t.Fatalf("overwrite lost: %q", v)
	}
}

func TestOrderedMapRejectsNonObject(t *testing.T) {
	m := NewOrderedMap()
	if err := json.Unmarshal([]byte(`[1,2]`), m); err == nil {
		t.Fatal("expected error for non-object input")
	}
}
