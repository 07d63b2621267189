package test

import (
	"fmt"
	"math/rand"

	"github.com/polkiloo/orders/internal/domain/model"
)

const notesAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "

// RandomASCIIString returns a string whose length lies within [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	buf := make([]byte, minLen+rand.Intn(maxLen-minLen+1))
	for i := range buf {
		buf[i] = notesAlphabet[rand.Intn(len(notesAlphabet))]
	}
	return string(buf)
}

// RandomProductQuantities returns n selections with distinct product ids and
// quantities between 1 and 5.
func RandomProductQuantities(n int) []model.ProductQuantity {
	items := make([]model.ProductQuantity, n)
	for i := range items {
		items[i] = model.ProductQuantity{
			ProductID: fmt.Sprintf("product-%d-%s", i, RandomASCIIString(4, 4)),
			Quantity:  1 + rand.Intn(5),
		}
	}
	return items
}
