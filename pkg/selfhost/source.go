package selfhost

// sourceTemplate is the self-hosting "punch-card" assembler, written in the
// dialect it itself assembles (spec.md section 4.7). Build bootstraps it
// with the reference assembler (pkg/refasm), and Default caches one such
// build per process, breaking the cyclic self-reference described in
// spec.md section 9.
//
// After a mnemonic with an operand, EMIT1/EMIT2 skip exactly one separator
// byte before the hex digits, matching the single space pkg/resolver writes.
//
// Zero-page layout:
//
//	$00/$01  source pointer        $08-$0B opcode buffer (4 bytes)
//	$02/$03  output pointer        $0C     current opcode byte
//	$04/$05  effective-addr ptr    $0D     current shape byte
//	$06/$07  relocation base       $0E/$0F current operand low/high
//	$10/$11  table search pointer  $12     hex-nibble scratch
//
// Forward conditional branches that could exceed the 8-bit displacement
// range jump through a same-block trampoline (TOxxx labels below) rather
// than branching directly to a distant handler.
const sourceTemplate = `
@0200
START:
 LDA# 00
 STAZ 00
 LDA# 20
 STAZ 01
 LDA# 00
 STAZ 02
 STAZ 03
 STAZ 04
 STAZ 05
 STAZ 06
 STAZ 07
LOOP:
 JSR :READSRC
 CMP# 21
 BEQ :TOBANG
 CMP# 40
 BEQ :TOAT
 CMP# 23
 BEQ :TOHASH
 CMP# 22
 BEQ :TOQUOTE
 CMP# 20
 BEQ :TOSKIP
 CMP# 0A
 BEQ :TOSKIP
 JSR :READ4
 JSR :SCANTABLE
 JSR :EMIT
 JMP :LOOP
TOBANG:
 JMP :DOBANG
TOAT:
 JMP :DOAT
TOHASH:
 JMP :DOHASH
TOQUOTE:
 JMP :DOQUOTE
TOSKIP:
 JMP :SKIPWS
SKIPWS:
 JSR :INCSRC
 JMP :LOOP
DOBANG:
 JSR :INCSRC
 JSR :READHEXBYTE
 STAZ 07
 JSR :READHEXBYTE
 STAZ 06
 JMP :LOOP
DOAT:
 JSR :INCSRC
 JSR :READHEXBYTE
 STAZ 05
 JSR :READHEXBYTE
 STAZ 04
 CLC
 LDAZ 04
 ADCZ 06
 STAZ 02
 LDAZ 05
 ADCZ 07
 STAZ 03
 JMP :LOOP
DOHASH:
 JSR :INCSRC
 JSR :READHEXBYTE
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 JMP :LOOP
DOQUOTE:
 JSR :INCSRC
QLOOP:
 JSR :READSRC
 CMP# 22
 BEQ :QDONE
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 JSR :INCSRC
 JMP :QLOOP
QDONE:
 JSR :INCSRC
 JMP :LOOP
READSRC:
 LDY# 00
 LDAY 00
 RTS
WRITEOUT:
 LDY# 00
 STAY 02
 RTS
INCSRC:
 INCZ 00
 BNE :ISDONE
 INCZ 01
ISDONE:
 RTS
INCOUT:
 INCZ 02
 BNE :IODONE
 INCZ 03
IODONE:
 RTS
INCEFF:
 INCZ 04
 BNE :IEDONE
 INCZ 05
IEDONE:
 RTS
HEXNIB:
 CMP# 41
 BCC :LOWDIGIT
 SBC# 37
 JMP :NIBDONE
LOWDIGIT:
 SEC
 SBC# 30
NIBDONE:
 RTS
READHEXBYTE:
 JSR :READSRC
 JSR :INCSRC
 JSR :HEXNIB
 ASL
 ASL
 ASL
 ASL
 STAZ 12
 JSR :READSRC
 JSR :INCSRC
 JSR :HEXNIB
 ORAZ 12
 RTS
READ4:
 JSR :READSRC
 STAZ 08
 JSR :INCSRC
 JSR :READSRC
 STAZ 09
 JSR :INCSRC
 JSR :READSRC
 STAZ 0A
 JSR :INCSRC
 JSR :READSRC
 STAZ 0B
 JSR :INCSRC
 RTS
SCANTABLE:
 LDA# 00
 STAZ 10
 LDA# 10
 STAZ 11
SCANLOOP:
 LDAZ 10
 CMP# {{.CatEndLow}}
 BNE :CONTCMP
 LDAZ 11
 CMP# {{.CatEndHigh}}
 BEQ :TABLEEND
CONTCMP:
 LDY# 00
 LDAY 10
 CMPZ 08
 BNE :NEXTENTRY
 LDY# 01
 LDAY 10
 CMPZ 09
 BNE :NEXTENTRY
 LDY# 02
 LDAY 10
 CMPZ 0A
 BNE :NEXTENTRY
 LDY# 03
 LDAY 10
 CMPZ 0B
 BNE :NEXTENTRY
 LDY# 04
 LDAY 10
 STAZ 0C
 LDY# 05
 LDAY 10
 STAZ 0D
 LDAZ 0C
 CMP# FF
 BEQ :ENDPROGRAM
 RTS
NEXTENTRY:
 CLC
 LDAZ 10
 ADC# 06
 STAZ 10
 LDAZ 11
 ADC# 00
 STAZ 11
 JMP :SCANLOOP
TABLEEND:
 BRK
ENDPROGRAM:
 JMP 8000
EMIT:
 LDAZ 0D
 CMP# 00
 BEQ :EMIT0
 CMP# 02
 BEQ :EMIT2
 JMP :EMIT1
EMIT0:
 LDAZ 0C
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 RTS
EMIT1:
 JSR :INCSRC
 JSR :READHEXBYTE
 STAZ 0E
 LDAZ 0C
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 LDAZ 0E
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 RTS
EMIT2:
 JSR :INCSRC
 JSR :READHEXBYTE
 STAZ 0F
 JSR :READHEXBYTE
 STAZ 0E
 LDAZ 0C
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 LDAZ 0E
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 LDAZ 0F
 JSR :WRITEOUT
 JSR :INCOUT
 JSR :INCEFF
 RTS
`

// CatalogueBase is the fixed address the self-hosting assembler's source
// above expects to find the byte-laid-out catalogue table at.
const CatalogueBase uint16 = 0x1000

// SourceRegionBase is where Boot loads the resolved program the
// self-hosting assembler is asked to assemble (spec.md section 3,
// "Source region").
const SourceRegionBase uint16 = 0x2000

// LoadBase is where Boot loads the self-hosting assembler's own bootstrap
// image (spec.md section 3, "Code region").
const LoadBase uint16 = 0x0200

// ProducedEntryPoint is the fixed address the END sentinel transfers
// control to once assembly completes, matching the "Output region"
// convention in spec.md section 3.
const ProducedEntryPoint uint16 = 0x8000
