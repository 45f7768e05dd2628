package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/splitter"
)

// definitionFile is the on-disk layout of an experiments file.
//
//	experiments:
//	  - id: checkout-v2
//	    name: Checkout redesign
//	    targetMetric: conversion_rate
//	    trafficAllocation: 0.5
//	    variants:
//	      - {id: control, weight: 0.5, isControl: true}
//	      - {id: treatment, weight: 0.5}
type definitionFile struct {
	Experiments []splitter.Definition `yaml:"experiments"`
}

func parseDefinitions(data []byte) ([]splitter.Definition, error) {
	var file definitionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode experiments: %w", err)
	}

	if len(file.Experiments) == 0 {
		return nil, errors.New("no experiments defined")
	}

	return file.Experiments, nil
}

func loadDefinitions(path string) ([]splitter.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiments %s: %w", path, err)
	}

	defs, err := parseDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return defs, nil
}

// parseRates converts variant=probability pairs into a lookup table.
func parseRates(pairs map[string]string) (map[string]float64, error) {
	rates := make(map[string]float64, len(pairs))
	for variant, raw := range pairs {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("rate for %q: %w", variant, err)
		}
		if rate < 0 || rate > 1 {
			return nil, fmt.Errorf("rate for %q must be within [0,1], got %v", variant, rate)
		}
		rates[variant] = rate
	}

	return rates, nil
}
