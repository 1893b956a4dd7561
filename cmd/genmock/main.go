// Command genmock writes a deterministic mock of the Akita case table page
// and the record store the fetch command builds from it. The CSV is produced
// by running the page through the real parser, transformer and store, so the
// fixture pair always matches pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -cases 400 \
//	  -html data/mock/akita.html \
//	  -csv data/mock/akita.csv
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/csvstore"
	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/web"
	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
	"github.com/couchcryptid/covid19-age-ratio/internal/pipeline"
	"github.com/couchcryptid/covid19-age-ratio/internal/prefecture"
)

// lastCase2020 is the highest case number reported in 2020.
const lastCase2020 = 13

var (
	firstDay2020 = time.Date(2020, time.March, 6, 0, 0, 0, 0, time.UTC)
	firstDay2021 = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	lastDay2021  = time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC)

	weekdays = []string{"日", "月", "火", "水", "木", "金", "土"}
	sexes    = []string{"男性", "女性"}
	cities   = []string{"秋田市", "横手市", "大館市", "能代市", "湯沢市", "由利本荘市", "大仙市"}
	jobs     = []string{"会社員", "自営業", "学生", "無職", "公務員", "非公表"}
)

// mockCase is one generated table row.
type mockCase struct {
	ID   int
	Date time.Time
	Age  string
	Sex  string
	City string
	Job  string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("cases", 400, "number of cases to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	htmlOut := flag.String("html", "", "output path for the mock page")
	csvOut := flag.String("csv", "", "output path for the matching record store")
	flag.Parse()

	if *htmlOut == "" || *csvOut == "" || *n <= lastCase2020 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -html, -csv (and -cases > %d)", lastCase2020)
	}

	cases := generate(*n, *seed)

	var page bytes.Buffer
	if err := renderPage(&page, cases); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	if err := os.WriteFile(*htmlOut, page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	log.Printf("wrote mock page: %s (%d cases)", *htmlOut, len(cases))

	appended, err := buildStore(*csvOut, page.Bytes())
	if err != nil {
		return fmt.Errorf("build record store: %w", err)
	}
	log.Printf("wrote record store: %s (%d records)", *csvOut, appended)
	return nil
}

// generate returns n cases in ascending id order. Cases up to lastCase2020
// fall in 2020; the rest start on 2021-01-01 with a rising daily count and
// pile up on 2021-12-31 if the year runs out.
func generate(n int, seed uint64) []mockCase {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ages := prefecture.NewAkita().Brackets().Names

	cases := make([]mockCase, 0, n)
	day := firstDay2020
	perDay := 0
	for id := 1; id <= n; id++ {
		switch {
		case id <= lastCase2020:
			day = firstDay2020.AddDate(0, 0, (id-1)*20)
		case id == lastCase2020+1:
			day = firstDay2021
			perDay = 0
		case perDay >= 1+rng.IntN(3+len(cases)/60):
			day = day.AddDate(0, 0, 1+rng.IntN(2))
			perDay = 0
		}
		// Every case above lastCase2020 must stay in 2021.
		if day.After(lastDay2021) {
			day = lastDay2021
		}
		perDay++

		age := ages[weightedAge(rng, len(ages))]
		if rng.IntN(50) == 0 {
			age = "非公表"
		}
		cases = append(cases, mockCase{
			ID:   id,
			Date: day,
			Age:  age,
			Sex:  sexes[rng.IntN(len(sexes))],
			City: cities[rng.IntN(len(cities))],
			Job:  jobs[rng.IntN(len(jobs))],
		})
	}
	return cases
}

// weightedAge favors the working-age brackets.
func weightedAge(rng *rand.Rand, n int) int {
	i := rng.IntN(n) + rng.IntN(n)
	return i / 2
}

// renderPage writes the cases newest first in the source's seven-column
// layout, with a header row of th cells the parser skips.
func renderPage(w io.Writer, cases []mockCase) error {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html lang=\"ja\"><head><meta charset=\"utf-8\"><title>新型コロナウイルス感染症の県内の患者発生状況</title></head>\n<body>\n<table>\n<tbody>\n")
	b.WriteString("<tr><th>No</th><th>判明日</th><th>年代</th><th>性別</th><th>居住地</th><th>職業</th><th>備考</th></tr>\n")
	for i := len(cases) - 1; i >= 0; i-- {
		c := cases[i]
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%d月%d日(%s)</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td></td></tr>\n",
			c.ID, int(c.Date.Month()), c.Date.Day(), weekdays[c.Date.Weekday()],
			c.Age, c.Sex, c.City, c.Job)
	}
	b.WriteString("</tbody>\n</table>\n</body></html>\n")
	_, err := w.Write(b.Bytes())
	return err
}

// buildStore runs the page through the ingest path into a fresh CSV.
func buildStore(path string, page []byte) (int, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}

	rows, err := web.ParseTable(bytes.NewReader(page))
	if err != nil {
		return 0, err
	}

	variant := prefecture.NewAkita()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res := pipeline.NewTransformer(variant, logger).Transform(rows)
	if res.Dropped > 0 {
		return 0, fmt.Errorf("%d generated rows did not resolve to a date", res.Dropped)
	}

	return csvstore.New(path).Append(res.Records, variant.Header(), domain.IDSet{}, false)
}
