// seed_baseline genera un script SQL que carga el stock base por sector a partir de un CSV
// exportado del sistema anterior (UTF-8 o ISO-8859-1).
//
// Columnas: company_id;sector_id;product_id;quantity (acepta ',' o ';' como separador).
//
// Uso: go run ./cmd/seed_baseline [-latin1] [-o salida.sql] ruta/stock.csv
// Sin -o escribe en seeds/stock_baselines.sql dentro del módulo.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type fila struct {
	companyID, sectorID, productID string
	quantity                       decimal.Decimal
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	outPath := flag.String("o", "", "archivo SQL de salida")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_baseline [-latin1] [-o salida.sql] stock.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	filas, err := leer(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	if *outPath == "" {
		*outPath = filepath.Join(findModuleRoot(), "seeds", "stock_baselines.sql")
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
			os.Exit(1)
		}
	}
	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	escribir(w, filas)
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d filas de stock base\n", *outPath, len(filas))
}

// leer valida cada fila; la primera se descarta si es encabezado. Una clave repetida es error.
func leer(in io.Reader) ([]fila, error) {
	br := bufio.NewReader(in)
	sep, err := detectarSeparador(br)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(br)
	r.Comma = sep
	r.FieldsPerRecord = 4
	r.TrimLeadingSpace = true

	seen := make(map[string]int)
	var filas []fila
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "company_id") {
			continue
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[3]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("línea %d: cantidad %q inválida", line, rec[3])
		}
		if qty.IsNegative() {
			return nil, fmt.Errorf("línea %d: cantidad negativa", line)
		}
		fl := fila{
			companyID: strings.TrimSpace(rec[0]),
			sectorID:  strings.TrimSpace(rec[1]),
			productID: strings.TrimSpace(rec[2]),
			quantity:  qty,
		}
		key := fl.companyID + "|" + fl.sectorID + "|" + fl.productID
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("línea %d: producto repetido (ya en línea %d)", line, prev)
		}
		seen[key] = line
		filas = append(filas, fl)
	}
	return filas, nil
}

func detectarSeparador(br *bufio.Reader) (rune, error) {
	head, err := br.Peek(br.Size())
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, err
	}
	first := string(head)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';', nil
	}
	return ',', nil
}

func escribir(w io.Writer, filas []fila) {
	sort.Slice(filas, func(i, k int) bool {
		a, b := filas[i], filas[k]
		if a.companyID != b.companyID {
			return a.companyID < b.companyID
		}
		if a.sectorID != b.sectorID {
			return a.sectorID < b.sectorID
		}
		return a.productID < b.productID
	})
	fmt.Fprintln(w, "-- Stock base por sector (generado por seed_baseline)")
	fmt.Fprintln(w, "BEGIN;")
	for _, fl := range filas {
		fmt.Fprintf(w, "INSERT INTO stock_baselines (company_id, sector_id, product_id, quantity, updated_at)\n")
		fmt.Fprintf(w, "VALUES ('%s', '%s', '%s', %s, now())\n",
			escapeSQL(fl.companyID), escapeSQL(fl.sectorID), escapeSQL(fl.productID), fl.quantity.String())
		fmt.Fprintln(w, "ON CONFLICT (company_id, sector_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now();")
	}
	fmt.Fprintln(w, "COMMIT;")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
