// Package jsonx is the JSON runtime of generated codecs.
//
// Generated to-json types implement Marshaler by writing one object to a
// Writer; generated from-json types are built by a Decode<Type> function
// reading a parsed Node by key. Neither side goes through reflection.
package jsonx
