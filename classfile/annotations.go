package classfile

// This is the parser's post-pass 2: RuntimeVisibleAnnotations attributes
// collected while walking fields, methods, and the class itself are
// re-parsed for embedded class references (annotation type, enum-constant
// type, class-literal values, and nested/array annotation values), per the
// element_value layout of the class-file spec (§4.7.16.1).
//
// Each of the three raw tables (class attributes, fields, methods) is
// walked starting at index 1, not 0: the member at index 0 of that table
// is skipped outright, regardless of whether it carries an annotation.
// s.classAttributes holds every class attribute in declaration order, and
// s.fieldAnnotations/s.methodAnnotations hold one slot per field/method
// (nil where that member has no RuntimeVisibleAnnotations) — preserving
// position is what makes this skip match the original parser, which
// indexes into its raw attributes[]/fields[]/methods[] arrays the same
// way. This mirrors the original parser and is intentionally not "fixed"
// — see DESIGN.md's open-question decision on this behavior.
func (s *source) addAnnotationReferences() error {
	for i := 1; i < len(s.classAttributes); i++ {
		attr := s.classAttributes[i]
		if attr.name != "RuntimeVisibleAnnotations" {
			continue
		}
		if err := s.walkAnnotationsAttribute(attr.value); err != nil {
			return err
		}
	}
	for i := 1; i < len(s.fieldAnnotations); i++ {
		if s.fieldAnnotations[i] == nil {
			continue
		}
		if err := s.walkAnnotationsAttribute(s.fieldAnnotations[i].value); err != nil {
			return err
		}
	}
	for i := 1; i < len(s.methodAnnotations); i++ {
		if s.methodAnnotations[i] == nil {
			continue
		}
		if err := s.walkAnnotationsAttribute(s.methodAnnotations[i].value); err != nil {
			return err
		}
	}
	return nil
}

type annotationCursor struct {
	buf []byte
	pos int
}

// u2 reads the next 2-byte field through the package-level u2 helper, the
// same one the original parser's annotation-offset reads use (as opposed
// to the unsigned reading reserved for SourceFile's index; see u2's own
// comment).
func (c *annotationCursor) u2() (int, error) {
	if c.pos+2 > len(c.buf) {
		return 0, errTruncatedInput
	}
	v := u2(c.buf, c.pos)
	c.pos += 2
	return v, nil
}

func (c *annotationCursor) u8() (byte, error) {
	if c.pos+1 > len(c.buf) {
		return 0, errTruncatedInput
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// walkAnnotationsAttribute parses a RuntimeVisibleAnnotations attribute
// body: u2 num_annotations followed by that many annotation structures.
func (s *source) walkAnnotationsAttribute(buf []byte) error {
	c := &annotationCursor{buf: buf}
	count, err := c.u2()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := s.walkAnnotation(c); err != nil {
			return err
		}
	}
	return nil
}

// walkAnnotation parses one annotation structure: type_index followed by
// num_element_value_pairs (name_index, element_value) entries.
func (s *source) walkAnnotation(c *annotationCursor) error {
	typeIdx, err := c.u2()
	if err != nil {
		return err
	}
	descriptor, err := s.utf8At(typeIdx)
	if err != nil {
		return err
	}
	for _, t := range descriptorToTypes(descriptor) {
		s.addImport(packageNameOf(t))
	}

	pairCount, err := c.u2()
	if err != nil {
		return err
	}
	for i := 0; i < pairCount; i++ {
		if _, err := c.u2(); err != nil { // element_name_index
			return err
		}
		if err := s.walkElementValue(c); err != nil {
			return err
		}
	}
	return nil
}

// walkElementValue parses one element_value per §4.7.16.1's tag dispatch.
func (s *source) walkElementValue(c *annotationCursor) error {
	tag, err := c.u8()
	if err != nil {
		return err
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		_, err := c.u2() // const_value_index; primitive/string, no reference
		return err
	case 'e':
		typeIdx, err := c.u2()
		if err != nil {
			return err
		}
		if _, err := c.u2(); err != nil { // const_name_index
			return err
		}
		descriptor, err := s.utf8At(typeIdx)
		if err != nil {
			return err
		}
		for _, t := range descriptorToTypes(descriptor) {
			s.addImport(packageNameOf(t))
		}
		return nil
	case 'c':
		classInfoIdx, err := c.u2()
		if err != nil {
			return err
		}
		descriptor, err := s.utf8At(classInfoIdx)
		if err != nil {
			return err
		}
		for _, t := range descriptorToTypes(descriptor) {
			s.addImport(packageNameOf(t))
		}
		return nil
	case '@':
		return s.walkAnnotation(c)
	case '[':
		count, err := c.u2()
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			if err := s.walkElementValue(c); err != nil {
				return err
			}
		}
		return nil
	default:
		return errUnknownConstant
	}
}
