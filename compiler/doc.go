/*
Package compiler is the gos backend pipeline.

Program Tree (ast) ->
	front ->
Intermediate Representation (ir) ->
	validate ->
	back ->
Assembly Text (NASM, x86-64 System V) ->
	nasm, ld ->
Binary Executable

The last step is left to the external tools.
*/
package compiler
