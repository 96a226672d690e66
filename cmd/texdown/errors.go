package main

import "errors"

var (
	ErrUsage       = errors.New("invalid usage")
	ErrConfig      = errors.New("invalid configuration")
	ErrRules       = errors.New("cannot load rules")
	ErrReadInput   = errors.New("cannot read input")
	ErrWriteOutput = errors.New("cannot write output")
	ErrNoteStore   = errors.New("note store")
)
