// Package textutil provides text helpers for console output.
//
// ToASCII folds accented and compatibility characters to their closest ASCII
// form (NFKD decomposition followed by dropping anything outside printable
// ASCII), so show titles stay readable on terminals without UTF-8 support.
package textutil
