// Package html turns HTML-rich event descriptions into flat text suitable
// for embedding: tags, scripts, styles and comments are removed, entities
// are decoded and whitespace is collapsed to single spaces.
package html
