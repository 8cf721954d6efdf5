package source

import (
	"reflect"
	"sync"
	"time"
)

var (
	timeType  = reflect.TypeFor[time.Time]()
	timeKinds sync.Map // reflect.Type -> bool, whether the type holds a time.Time
)

// utcTimes moves every settable time.Time reachable from v into UTC.
// Rows from different sources then agree on the calendar day of a time.
func utcTimes(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	walkTimes(rv.Elem())
}

func walkTimes(v reflect.Value) {
	if !holdsTime(v.Type()) {
		return
	}
	switch v.Kind() {
	case reflect.Struct:
		if v.Type() == timeType {
			if v.CanSet() {
				v.Set(reflect.ValueOf(v.Interface().(time.Time).UTC()))
			}
			return
		}
		for i := range v.NumField() {
			if f := v.Field(i); f.CanSet() {
				walkTimes(f)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			walkTimes(v.Index(i))
		}
	case reflect.Pointer:
		if !v.IsNil() {
			walkTimes(v.Elem())
		}
	}
}

// holdsTime reports whether values of t can contain a time.Time that
// walkTimes reaches.
func holdsTime(t reflect.Type) bool {
	if known, ok := timeKinds.Load(t); ok {
		return known.(bool)
	}
	found := searchTime(t, make(map[reflect.Type]bool))
	timeKinds.Store(t, found)
	return found
}

func searchTime(t reflect.Type, visiting map[reflect.Type]bool) bool {
	if t == timeType {
		return true
	}
	if visiting[t] {
		return false
	}
	visiting[t] = true
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() && searchTime(f.Type, visiting) {
				return true
			}
		}
	case reflect.Slice, reflect.Array, reflect.Pointer:
		return searchTime(t.Elem(), visiting)
	}
	return false
}
