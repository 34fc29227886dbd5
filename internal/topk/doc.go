// Package topk keeps the k best items seen so far in a fixed-capacity,
// sorted array.
package topk
