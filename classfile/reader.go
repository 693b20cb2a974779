// Package classfile decodes one VM class file into a model.ParsedClass:
// name, package, abstract flag, source file, and the set of referenced
// package names (after filtering). The wire format is summarized in
// spec.md §4.B and implemented directly against
// original_source/src/jdepend/framework/ClassFileParser.java.
package classfile

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/classdep/classdep/filter"
	"github.com/classdep/classdep/internal/classerr"
	"github.com/classdep/classdep/model"
)

const javaMagic = 0xCAFEBABE

var errTruncatedInput = errors.New("truncated input")

// Reader parses class files into model.ParsedClass values. The zero value
// uses an empty filter.Filter (nothing is rejected).
type Reader struct {
	Filter *filter.Filter
}

// NewReader constructs a Reader using f to decide which referenced package
// names are kept. A nil f accepts everything.
func NewReader(f *filter.Filter) *Reader {
	if f == nil {
		f = filter.New()
	}
	return &Reader{Filter: f}
}

// source carries the byte cursor and in-progress parse state for one class
// file. A fresh source is used per Parse call so a Reader itself holds no
// per-class state and is safe to reuse (and to share across goroutines
// parsing different classes, since it has none of its own mutable state
// beyond the read-only Filter).
type source struct {
	r      io.Reader
	filter *filter.Filter

	pool        []constant // 1-indexed; index 0 unused
	sourceFile  string
	name        string
	packageName string
	isAbstract  bool
	imports     map[string]struct{}

	// fieldAnnotations/methodAnnotations hold one slot per field/method, in
	// declaration order (nil where that member carries no
	// RuntimeVisibleAnnotations attribute). classAttributes holds every
	// class-level attribute, in declaration order, not just the RVA ones.
	// Keeping raw positional arrays (rather than RVA-only slices) matters
	// for addAnnotationReferences' index-1 skip below.
	fieldAnnotations  []*attribute
	methodAnnotations []*attribute
	classAttributes   []*attribute
}

type attribute struct {
	name  string
	value []byte
}

// Parse reads one class file from r and returns the resulting ParsedClass.
// className, when the caller knows it (e.g. a file path), is used only to
// make returned errors identifiable; it is not trusted over the class
// file's own CONSTANT_Class-derived name.
func (reader *Reader) Parse(r io.Reader, className string) (model.ParsedClass, error) {
	s := &source{
		r:           r,
		filter:      reader.Filter,
		sourceFile:  "Unknown",
		packageName: "Default",
		imports:     make(map[string]struct{}),
	}
	if s.filter == nil {
		s.filter = filter.New()
	}

	if err := s.parseMagic(); err != nil {
		return model.ParsedClass{}, classerr.NewParseError(classerr.InvalidClassFile, className, "bad magic", err)
	}
	if err := s.skipVersions(); err != nil {
		return model.ParsedClass{}, classerr.NewParseError(classerr.TruncatedInput, className, "reading version", err)
	}
	if err := s.parseConstantPool(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.parseAccessFlags(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.parseThisClass(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.parseSuperClass(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.parseInterfaces(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.parseFieldsOrMethods(&s.fieldAnnotations); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.parseFieldsOrMethods(&s.methodAnnotations); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.parseClassAttributes(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.addClassConstantReferences(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}
	if err := s.addAnnotationReferences(); err != nil {
		return model.ParsedClass{}, wrapParseError(className, err)
	}

	return s.toParsedClass(), nil
}

// wrapParseError classifies a generic internal error into the taxonomy of
// spec.md §7, defaulting to TruncatedInput for plain EOF-ish failures.
func wrapParseError(className string, err error) error {
	var pe *classerr.ParseError
	if errors.As(err, &pe) {
		return err
	}
	switch {
	case errors.Is(err, errUnknownConstant):
		return classerr.NewParseError(classerr.UnknownConstant, className, "unrecognized constant tag", err)
	case errors.Is(err, errConstantPoolIndex):
		return classerr.NewParseError(classerr.ConstantPoolIndexOutOfRange, className, "constant pool index out of range", err)
	case errors.Is(err, errNotUTF8):
		return classerr.NewParseError(classerr.NotUTF8, className, "expected a UTF8 constant", err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, errTruncatedInput):
		return classerr.NewParseError(classerr.TruncatedInput, className, "unexpected end of input", err)
	default:
		return classerr.NewParseError(classerr.TruncatedInput, className, "read failure", err)
	}
}

var (
	errUnknownConstant   = errors.New("unknown constant tag")
	errConstantPoolIndex = errors.New("constant pool index out of range")
	errNotUTF8           = errors.New("constant pool entry is not a UTF8 type")
)

func (s *source) readU8() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *source) readU16() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (s *source) readU32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func (s *source) readI32() (int32, error) {
	v, err := s.readU32()
	return int32(v), err
}

func (s *source) readF32() (float32, error) {
	v, err := s.readU32()
	return math.Float32frombits(v), err
}

func (s *source) readU64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func (s *source) readI64() (int64, error) {
	v, err := s.readU64()
	return int64(v), err
}

func (s *source) readF64() (float64, error) {
	v, err := s.readU64()
	return math.Float64frombits(v), err
}

func (s *source) readBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *source) parseMagic() error {
	magic, err := s.readU32()
	if err != nil {
		return err
	}
	if magic != javaMagic {
		return errors.New("bad magic")
	}
	return nil
}

func (s *source) skipVersions() error {
	if _, err := s.readU16(); err != nil { // minor
		return err
	}
	if _, err := s.readU16(); err != nil { // major
		return err
	}
	return nil
}

func (s *source) parseConstantPool() error {
	count, err := s.readU16()
	if err != nil {
		return err
	}
	s.pool = make([]constant, count)
	for i := 1; i < int(count); i++ {
		c, err := s.parseOneConstant()
		if err != nil {
			return err
		}
		s.pool[i] = c
		if c.tag == tagLong || c.tag == tagDouble {
			i++ // 8-byte constants occupy two logical slots
		}
	}
	return nil
}

func (s *source) parseOneConstant() (constant, error) {
	tag, err := s.readU8()
	if err != nil {
		return constant{}, err
	}
	switch tag {
	case tagClass, tagString, tagMethodType:
		idx, err := s.readU16()
		return constant{tag: tag, index1: idx}, err
	case tagField, tagMethod, tagInterfaceMethod, tagNameAndType, tagInvokeDynamic:
		a, err := s.readU16()
		if err != nil {
			return constant{}, err
		}
		b, err := s.readU16()
		return constant{tag: tag, index1: a, index2: b}, err
	case tagInteger:
		v, err := s.readI32()
		return constant{tag: tag, value: v}, err
	case tagFloat:
		v, err := s.readF32()
		return constant{tag: tag, value: v}, err
	case tagLong:
		v, err := s.readI64()
		return constant{tag: tag, value: v}, err
	case tagDouble:
		v, err := s.readF64()
		return constant{tag: tag, value: v}, err
	case tagUTF8:
		length, err := s.readU16()
		if err != nil {
			return constant{}, err
		}
		raw, err := s.readBytes(int(length))
		if err != nil {
			return constant{}, err
		}
		str, err := decodeModifiedUTF8(raw)
		if err != nil {
			return constant{}, err
		}
		return constant{tag: tag, value: str}, nil
	case tagMethodHandle:
		kind, err := s.readU8()
		if err != nil {
			return constant{}, err
		}
		ref, err := s.readU16()
		return constant{tag: tag, index1: uint16(kind), index2: ref}, err
	default:
		return constant{}, errUnknownConstant
	}
}

func (s *source) constantAt(index int) (constant, error) {
	if index <= 0 || index >= len(s.pool) {
		return constant{}, errConstantPoolIndex
	}
	return s.pool[index], nil
}

func (s *source) utf8At(index int) (string, error) {
	c, err := s.constantAt(index)
	if err != nil {
		return "", err
	}
	if c.tag != tagUTF8 {
		return "", errNotUTF8
	}
	return c.value.(string), nil
}

// classNameAt resolves a CONSTANT_Class entry to its dotted class name.
func (s *source) classNameAt(index int) (string, error) {
	c, err := s.constantAt(index)
	if err != nil {
		return "", err
	}
	name, err := s.utf8At(int(c.index1))
	if err != nil {
		return "", err
	}
	return slashesToDots(name), nil
}

func (s *source) parseAccessFlags() error {
	flags, err := s.readU16()
	if err != nil {
		return err
	}
	s.isAbstract = flags&accAbstract != 0 || flags&accInterface != 0
	return nil
}

func (s *source) parseThisClass() error {
	idx, err := s.readU16()
	if err != nil {
		return err
	}
	name, err := s.classNameAt(int(idx))
	if err != nil {
		return err
	}
	s.name = name
	s.packageName = packageNameOf(name)
	return nil
}

func (s *source) parseSuperClass() error {
	idx, err := s.readU16()
	if err != nil {
		return err
	}
	if idx == 0 {
		return nil // java.lang.Object has no superclass
	}
	name, err := s.classNameAt(int(idx))
	if err != nil {
		return err
	}
	s.addImport(packageNameOf(name))
	return nil
}

func (s *source) parseInterfaces() error {
	count, err := s.readU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		idx, err := s.readU16()
		if err != nil {
			return err
		}
		name, err := s.classNameAt(int(idx))
		if err != nil {
			return err
		}
		s.addImport(packageNameOf(name))
	}
	return nil
}

// parseFieldsOrMethods reads the field_info or method_info table (they
// share a layout) and appends one slot per member to *annotations — that
// member's RuntimeVisibleAnnotations attribute, or nil if it has none — so
// the slice's index lines up with the member's position in the raw table.
// Per spec.md §9's open question (mirrored from the original parser), the
// loop that later walks this slice for annotations starts at index 1, not
// 0 — that behavior lives in addAnnotationReferences, not here; this
// function itself visits every member so descriptor-derived imports are
// never skipped.
func (s *source) parseFieldsOrMethods(annotations *[]*attribute) error {
	count, err := s.readU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := s.readU16(); err != nil { // access flags
			return err
		}
		if _, err := s.readU16(); err != nil { // name index
			return err
		}
		descIdx, err := s.readU16()
		if err != nil {
			return err
		}
		descriptor, err := s.utf8At(int(descIdx))
		if err != nil {
			return err
		}
		for _, t := range descriptorToTypes(descriptor) {
			if t == "" {
				continue
			}
			s.addImport(packageNameOf(t))
		}

		attrCount, err := s.readU16()
		if err != nil {
			return err
		}
		var rva *attribute
		for a := 0; a < int(attrCount); a++ {
			attr, err := s.parseAttribute()
			if err != nil {
				return err
			}
			if attr.name == "RuntimeVisibleAnnotations" {
				rva = attr
			}
		}
		*annotations = append(*annotations, rva)
	}
	return nil
}

func (s *source) parseClassAttributes() error {
	count, err := s.readU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		attr, err := s.parseAttribute()
		if err != nil {
			return err
		}
		s.classAttributes = append(s.classAttributes, attr)
		if attr.name == "SourceFile" {
			idx := u2Strict(attr.value, 0)
			name, err := s.utf8At(int(idx))
			if err != nil {
				return err
			}
			s.sourceFile = name
		}
	}
	return nil
}

func (s *source) parseAttribute() (*attribute, error) {
	nameIdx, err := s.readU16()
	if err != nil {
		return nil, err
	}
	name, err := s.utf8At(int(nameIdx))
	if err != nil {
		return nil, err
	}
	length, err := s.readU32()
	if err != nil {
		return nil, err
	}
	value, err := s.readBytes(int(length))
	if err != nil {
		return nil, err
	}
	return &attribute{name: name, value: value}, nil
}

// addClassConstantReferences is the parser's post-pass 1: every CONSTANT_Class
// entry in the pool is treated as a reference, picking up types buried in
// bytecode bodies without decoding instructions.
func (s *source) addClassConstantReferences() error {
	for i := 1; i < len(s.pool); i++ {
		c := s.pool[i]
		if c.tag == 0 { // the trailing half of a LONG/DOUBLE slot
			continue
		}
		if c.tag == tagClass {
			name, err := s.utf8At(int(c.index1))
			if err != nil {
				return err
			}
			s.addImport(packageNameOf(slashesToDots(name)))
		}
		if c.tag == tagLong || c.tag == tagDouble {
			i++
		}
	}
	return nil
}

func (s *source) addImport(pkg string) {
	if pkg == "" {
		return
	}
	if !s.filter.Accept(pkg) {
		return
	}
	if pkg == s.packageName {
		return
	}
	s.imports[pkg] = struct{}{}
}

func (s *source) toParsedClass() model.ParsedClass {
	imports := make([]string, 0, len(s.imports))
	for name := range s.imports {
		imports = append(imports, name)
	}
	return model.ParsedClass{
		Name:        s.name,
		PackageName: s.packageName,
		IsAbstract:  s.isAbstract,
		SourceFile:  s.sourceFile,
		Imports:     imports,
	}
}

func slashesToDots(s string) string {
	return strings.ReplaceAll(s, "/", ".")
}

// packageNameOf returns the package name for a dotted (or array-descriptor)
// type name: everything before the last '.', or "Default" if there is no
// dot. A leading '[' indicates an array descriptor; it is unwrapped to its
// element type first, and an empty string is returned for primitive
// element types (they contribute no package).
func packageNameOf(name string) string {
	v := name
	if len(v) > 0 && v[0] == '[' {
		types := descriptorToTypes(v)
		if len(types) == 0 {
			return "" // primitive array element
		}
		v = types[0]
	}
	v = slashesToDots(v)
	if idx := strings.LastIndex(v, "."); idx > 0 {
		return v[:idx]
	}
	return "Default"
}
