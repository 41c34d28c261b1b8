package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func GenerateNChar(n int) (string, error) {
	id, err := gonanoid.New(n)
	if err != nil {
		return "", err
	}
	return id, nil
}

// AddUniquePrefixToFileName prefixes a short random id so repeated uploads of
// the same filename never collide in the object store.
func AddUniquePrefixToFileName(fileName string) string {
	prefix, err := GenerateNChar(12)
	if err != nil {
		return fileName
	}
	return prefix + "-" + fileName
}
