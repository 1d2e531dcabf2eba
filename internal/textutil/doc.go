// Package textutil provides small string helpers shared across the
// codebase: storage-path sanitizing and diacritic folding for tokens
// derived from user-entered field labels.
package textutil
