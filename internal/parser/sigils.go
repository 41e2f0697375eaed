package parser

// The emoji grammar. Each constant names the construct the emoji
// introduces; the parsers and the analyser dispatch on these.
const (
	// Blocks
	BlockOpen  = '🍇'
	BlockClose = '🍉'

	// Package level
	SigilPackageImport = '📦'
	SigilStartFlag     = '🏁'
	SigilExport        = '🔑'
	SigilClass         = '🐇'
	SigilValueType     = '🕊'
	SigilEnum          = '🦃'
	SigilProtocol      = '🐊'

	// Members
	SigilMethod        = '🐖'
	SigilTypeMethod    = '🐑'
	SigilInitializer   = '🐈'
	SigilInstanceVar   = '🍰'
	SigilFinal         = '🔏'
	SigilOverriding    = '✒'
	SigilDeprecated    = '⚠'
	SigilRequired      = '📌'
	SigilMutating      = '💪'
	SigilAccessPrivate = '🔒'
	SigilAccessProtected = '🔐'
	SigilCanThrow      = '🚨'

	// Types
	SigilOptional      = '🍬'
	SigilMeta          = '🔳'
	SigilSelf          = '🐕'
	SigilSomething     = '⚪'
	SigilSomeobject    = '🔵'
	SigilNothingness   = '✨'
	SigilGenerics      = '🐚'
	SigilMultiProtocol = '🍱'
	SigilNamespace     = '🔶'
	SigilReturnArrow   = '➡'
	SigilInference     = '●'

	// Statements
	SigilFrozenDeclaration = '🍦'
	SigilVarDeclaration    = '🍰'
	SigilAssignment        = '🍮'
	SigilIncrement         = '🍫'
	SigilDecrement         = '🍳'
	SigilIf                = '🍊'
	SigilElseIf            = '🍋'
	SigilElse              = '🍓'
	SigilWhile             = '🔁'
	SigilForIn             = '🔂'
	SigilReturn            = '🍎'
	SigilThrow             = '🚨'
	SigilSuperInitializer  = '🐐'

	// Expressions
	SigilListLiteral     = '🍨'
	SigilLiteralEnd      = '🍆'
	SigilDictLiteral     = '🍯'
	SigilConcatLiteral   = '🍪'
	SigilRangeLiteral    = '⏩'
	SigilRangeStepLiteral = '⏭'
	SigilInstantiate     = '🔷'
	SigilTypeMethodCall  = '🍩'
	SigilSuperCall       = '🐿'
	SigilMethodCapture   = '🌶'
	SigilCallableCall    = '🍭'
	SigilUnwrap          = '🍺'
	SigilErrorExtract    = '🍻'
	SigilIsNothingness   = '☁'
	SigilIsError         = '⚡'
	SigilIdentityCheck   = '😜'
	SigilCastClass       = '🔲'
	SigilThis            = '🐕'

	// Operators
	OpAdd        = '➕'
	OpSubtract   = '➖'
	OpMultiply   = '✖'
	OpDivide     = '➗'
	OpRemainder  = '🚮'
	OpLess       = '◀'
	OpGreater    = '▶'
	OpLessEq     = '⏬'
	OpGreaterEq  = '⏫'
	OpEqual      = '😛'
	OpAnd        = '🤝'
	OpOr         = '👐'
	OpNot        = '❎'
	OpBinaryAnd  = '⏺'
	OpBinaryOr   = '💢'
	OpBinaryXor  = '❌'
	OpShiftLeft  = '👈'
	OpShiftRight = '👉'
)
