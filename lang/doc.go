// Package lang builds interpreters from declared tokens.
//
// A language is a [Registry] of [Prototype] values. Each prototype owns a
// grammar pattern (see package grammar) or a single-unit regular expression,
// an optional operator notation with precedence, and an evaluation rule. The
// [Parser] matches a lexical stream against the registry and produces a
// [Tree] of [Token] values; the [Evaluator] walks the tree in a [Scope] and
// produces a [Result].
//
// Prototypes flagged as priority are declared before the other statements of
// their block, so a function can be called before its textual definition.
// Functions are bound by name and parameter count.
//
// Errors fall into four categories. [CompileError] reports a malformed
// prototype during setup. [ParseError] reports source text that does not
// match. [BindError] reports a structural defect found while evaluating,
// such as an undeclared name. All three abort the run. [InLanguageError] is
// raised by source code and travels through the evaluator as an
// error-flagged [Result] until a handler token intercepts it.
//
// [Processor] bundles a parser and an evaluator behind [Processor.Run].
package lang
