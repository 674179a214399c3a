package sconfig

import "reflect"

// Accessor reads and writes a value held somewhere else.
type Accessor[T any] interface {
	Get() T
	Set(T)
}

// Dependent is a computed field: its value lives in another object when that
// object is available, and in a backup value otherwise. Writes always update
// the backup, so the last written value survives the source going away.
//
// A struct field of type *Dependent[T] is modelled as a field of type T.
//
//	type Settings struct {
//	    Spawn *sconfig.Dependent[Location]
//	}
//
//	s.Spawn = sconfig.NewDependent(Location{}, func() sconfig.Accessor[Location] {
//	    if w := worlds.Default(); w != nil {
//	        return w.SpawnAccessor()
//	    }
//	    return nil
//	})
type Dependent[T any] struct {
	backup T
	source func() Accessor[T]
}

// NewDependent returns a Dependent with an initial backup value. source may
// be nil, and may return nil when the dependency is unavailable.
func NewDependent[T any](backup T, source func() Accessor[T]) *Dependent[T] {
	return &Dependent[T]{backup: backup, source: source}
}

// Get returns the source's value, or the backup when there is no source.
func (d *Dependent[T]) Get() T {
	if a := d.accessor(); a != nil {
		return a.Get()
	}
	return d.backup
}

// Set writes v to the source, if present, and to the backup.
func (d *Dependent[T]) Set(v T) {
	if a := d.accessor(); a != nil {
		a.Set(v)
	}
	d.backup = v
}

// Backup returns the backup value.
func (d *Dependent[T]) Backup() T {
	return d.backup
}

// Attached reports whether the source is currently available.
func (d *Dependent[T]) Attached() bool {
	return d.accessor() != nil
}

func (d *Dependent[T]) accessor() Accessor[T] {
	if d.source == nil {
		return nil
	}
	return d.source()
}

func (d *Dependent[T]) valueType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (d *Dependent[T]) getValue() reflect.Value {
	v := d.Get()
	return reflect.ValueOf(&v).Elem()
}

func (d *Dependent[T]) setValue(v reflect.Value) {
	var x T
	if v.IsValid() {
		reflect.ValueOf(&x).Elem().Set(v)
	}
	d.Set(x)
}
