package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestLeer_PuntoYComaYDecimalConComa(t *testing.T) {
	csv := "company_id;sector_id;product_id;quantity\nemp;pasillo-1;A;10,5\nemp;pasillo-1;B;3\n"
	filas, err := leer(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, filas, 2)
	assert.Equal(t, "10.5", filas[0].quantity.String())
}

func TestLeer_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("emp,Bodega Año,A,1\n")
	require.NoError(t, err)
	filas, err := leer(transform.NewReader(strings.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	assert.Equal(t, "Bodega Año", filas[0].sectorID)
}

func TestLeer_Rechazos(t *testing.T) {
	_, err := leer(strings.NewReader("emp,s,A,-1\n"))
	assert.ErrorContains(t, err, "negativa")

	_, err = leer(strings.NewReader("emp,s,A,x\n"))
	assert.ErrorContains(t, err, "inválida")

	_, err = leer(strings.NewReader("emp,s,A,1\nemp,s,A,2\n"))
	assert.ErrorContains(t, err, "repetido")
}

func TestEscribir_UpsertOrdenadoYEscapado(t *testing.T) {
	filas, err := leer(strings.NewReader("emp,s,B,2\nemp,s,O'Neil,1\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	escribir(&buf, filas)
	out := buf.String()
	assert.Contains(t, out, "'O''Neil'")
	assert.Less(t, strings.Index(out, "'B'"), strings.Index(out, "'O''Neil'"))
	assert.Contains(t, out, "ON CONFLICT (company_id, sector_id, product_id)")
}
