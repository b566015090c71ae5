// Package textutil provides the script-aware name and title normalization used
// when comparing catalog records against external metadata services.
//
// Normalize runs a three-step pipeline:
//   - Czech renderings of Japanese names are rewritten to Hepburn spelling
//     ("Jasudžiró Ozu" becomes "yasujiro ozu")
//   - otherwise, Czech renderings of Korean names are rewritten toward Revised
//     Romanization ("Kim Ki-dŏk" becomes "kim kideok")
//   - every value is then folded: diacritics removed, lowercased, punctuation
//     dropped and whitespace collapsed
//
// Western names are untouched by the first two steps. Similarity and
// TokenSort support fuzzy and order-independent comparison of folded values.
package textutil
