// Package grammar compiles token patterns into rules.
//
// A pattern describes the textual form of one token:
//
//	'func' val '(' ( val ','? )* ')' ( 'throws' ( error ','? )+ )? block
//
// reads as the keyword "func", one raw name, an opening parenthesis, zero or
// more parameter names each optionally followed by a comma, a closing
// parenthesis, an optional throws clause listing error kinds, and a code
// block. Literal separators such as the comma are structure; only captures
// produce token groups.
//
// The compiler checks structure only. It does not know what a capture name
// means beyond the reserved names val, error, and block.
package grammar
