// Package domain models COVID-19 case reports published by Japanese
// prefectures and the age-ratio buckets derived from them.
//
// # Data Source
//
// Each prefecture publishes its confirmed cases as an HTML table on its
// official site. One row is one case. The Akita table
// (https://www.pref.akita.lg.jp/pages/archive/47957) has seven cells per row:
//
//	No | 感染判明日 | 年代 | 性別 | 居住地 | 職業 | 備考
//
// Only the serial number, the report date and the age bracket are kept.
//
// # Report Date Conventions
//
// Dates in the table omit the year: "3月15日" (March 15). The digit runs of
// the cell become a "<month>-<day>" fragment that is later qualified with a
// year. The year is not printed anywhere on the page, so it is resolved from
// the serial number:
//
//	No < 14   → 2020 (the first wave closed with case 13)
//	No >= 14  → 2021
//
// These cutovers are a property of one prefecture's reporting timeline and
// are configured per source as [YearRule] values. An id below every rule is
// rejected with [ErrUnresolvedDate] rather than guessed.
//
// Full-width digits ("１２月３日") occur in some rows and are folded to ASCII
// before extraction.
//
// # Age Brackets
//
// Brackets are source-language strings in a fixed order, from "10歳未満"
// (under 10) to "90歳以上" (90 and over). Each has a short legend label
// ("-9", "10-19", ..., "90-") and a fixed colour. Unknown strings such as
// "非公表" (undisclosed) are ignored when computing ratios, so every bucket
// still sums to 100%.
//
// # Buckets
//
// A bucket is one calendar day or one ISO week. Weekly buckets are keyed by
// ISO year and week so that week 1 of different years never merge. See
// [Aggregate].
package domain
