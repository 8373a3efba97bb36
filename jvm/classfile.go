package jvm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Member access flags (JVM spec table 4.5/4.6).
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccProtected = 0x0004
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccVarargs   = 0x0080
	AccAbstract  = 0x0400
	AccSynthetic = 0x1000
)

const classMagic = 0xCAFEBABE

// ---------------------------------------------------------------------------
// Class File Error Types
// ---------------------------------------------------------------------------

var (
	ErrInvalidClassMagic = errors.New("invalid class file magic: expected 0xCAFEBABE")
	ErrCorruptClassFile  = errors.New("corrupt class file")
	ErrBadConstantIndex  = errors.New("invalid constant pool index")
)

// ---------------------------------------------------------------------------
// Parsed class model
// ---------------------------------------------------------------------------

// ClassFile is the subset of a parsed .class file needed for interop
// resolution: the class identity and its declared methods and fields.
type ClassFile struct {
	Name      string // internal binary name
	SuperName string // internal binary name, empty for java/lang/Object
	Flags     uint16
	Methods   []MethodInfo
	Fields    []FieldInfo
}

// MethodInfo is one declared method or constructor ("<init>").
type MethodInfo struct {
	Name       string
	Descriptor string
	Flags      uint16
	Exceptions []string // internal binary names from the Exceptions attribute
}

// FieldInfo is one declared field.
type FieldInfo struct {
	Name       string
	Descriptor string
	Flags      uint16
}

// IsPublic reports whether the method is public.
func (m *MethodInfo) IsPublic() bool { return m.Flags&AccPublic != 0 }

// IsStatic reports whether the method is static.
func (m *MethodInfo) IsStatic() bool { return m.Flags&AccStatic != 0 }

// IsVarargs reports whether the method was declared with a variable-arity
// last parameter.
func (m *MethodInfo) IsVarargs() bool { return m.Flags&AccVarargs != 0 }

// IsPublic reports whether the field is public.
func (f *FieldInfo) IsPublic() bool { return f.Flags&AccPublic != 0 }

// IsStatic reports whether the field is static.
func (f *FieldInfo) IsStatic() bool { return f.Flags&AccStatic != 0 }

// ---------------------------------------------------------------------------
// ClassReader: parses the class file binary format
// ---------------------------------------------------------------------------

// constant pool tags
const (
	cpUtf8               = 1
	cpInteger            = 3
	cpFloat              = 4
	cpLong               = 5
	cpDouble             = 6
	cpClass              = 7
	cpString             = 8
	cpFieldref           = 9
	cpMethodref          = 10
	cpInterfaceMethodref = 11
	cpNameAndType        = 12
	cpMethodHandle       = 15
	cpMethodType         = 16
	cpDynamic            = 17
	cpInvokeDynamic      = 18
	cpModule             = 19
	cpPackage            = 20
)

type classReader struct {
	data   []byte
	offset int

	// Constant pool, 1-indexed. utf8 holds string entries; classNames
	// holds the utf8 index for CONSTANT_Class entries.
	utf8       map[uint16]string
	classNames map[uint16]uint16
}

// ParseClassFile parses the binary content of a .class file.
func ParseClassFile(data []byte) (*ClassFile, error) {
	r := &classReader{
		data:       data,
		utf8:       make(map[uint16]string),
		classNames: make(map[uint16]uint16),
	}
	return r.parse()
}

func (r *classReader) u1() (byte, error) {
	if r.offset+1 > len(r.data) {
		return 0, fmt.Errorf("%w: unexpected end at offset %d", ErrCorruptClassFile, r.offset)
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

func (r *classReader) u2() (uint16, error) {
	if r.offset+2 > len(r.data) {
		return 0, fmt.Errorf("%w: unexpected end at offset %d", ErrCorruptClassFile, r.offset)
	}
	v := binary.BigEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return v, nil
}

func (r *classReader) u4() (uint32, error) {
	if r.offset+4 > len(r.data) {
		return 0, fmt.Errorf("%w: unexpected end at offset %d", ErrCorruptClassFile, r.offset)
	}
	v := binary.BigEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

func (r *classReader) skip(n int) error {
	if r.offset+n > len(r.data) {
		return fmt.Errorf("%w: unexpected end at offset %d", ErrCorruptClassFile, r.offset)
	}
	r.offset += n
	return nil
}

func (r *classReader) utf8At(index uint16) (string, error) {
	s, ok := r.utf8[index]
	if !ok {
		return "", fmt.Errorf("%w: no UTF8 entry at %d", ErrBadConstantIndex, index)
	}
	return s, nil
}

func (r *classReader) classNameAt(index uint16) (string, error) {
	nameIndex, ok := r.classNames[index]
	if !ok {
		return "", fmt.Errorf("%w: no class entry at %d", ErrBadConstantIndex, index)
	}
	return r.utf8At(nameIndex)
}

func (r *classReader) parse() (*ClassFile, error) {
	magic, err := r.u4()
	if err != nil {
		return nil, err
	}
	if magic != classMagic {
		return nil, fmt.Errorf("%w: got 0x%08X", ErrInvalidClassMagic, magic)
	}

	// minor and major version; any version shares the member layout we read
	if err := r.skip(4); err != nil {
		return nil, err
	}

	if err := r.readConstantPool(); err != nil {
		return nil, err
	}

	cf := &ClassFile{}
	if cf.Flags, err = r.u2(); err != nil {
		return nil, err
	}

	thisClass, err := r.u2()
	if err != nil {
		return nil, err
	}
	if cf.Name, err = r.classNameAt(thisClass); err != nil {
		return nil, err
	}

	superClass, err := r.u2()
	if err != nil {
		return nil, err
	}
	if superClass != 0 {
		if cf.SuperName, err = r.classNameAt(superClass); err != nil {
			return nil, err
		}
	}

	// interfaces
	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	if err := r.skip(int(ifaceCount) * 2); err != nil {
		return nil, err
	}

	if cf.Fields, err = r.readFields(); err != nil {
		return nil, err
	}
	if cf.Methods, err = r.readMethods(); err != nil {
		return nil, err
	}

	// trailing class attributes are not needed
	return cf, nil
}

func (r *classReader) readConstantPool() error {
	count, err := r.u2()
	if err != nil {
		return err
	}

	for i := uint16(1); i < count; i++ {
		tag, err := r.u1()
		if err != nil {
			return err
		}

		switch tag {
		case cpUtf8:
			length, err := r.u2()
			if err != nil {
				return err
			}
			if r.offset+int(length) > len(r.data) {
				return fmt.Errorf("%w: truncated UTF8 entry", ErrCorruptClassFile)
			}
			// Modified UTF-8 only diverges from UTF-8 for NUL and
			// supplementary characters, neither of which occurs in the
			// class, member, and descriptor names we care about.
			r.utf8[i] = string(r.data[r.offset : r.offset+int(length)])
			r.offset += int(length)

		case cpClass:
			nameIndex, err := r.u2()
			if err != nil {
				return err
			}
			r.classNames[i] = nameIndex

		case cpInteger, cpFloat, cpFieldref, cpMethodref, cpInterfaceMethodref,
			cpNameAndType, cpDynamic, cpInvokeDynamic:
			if err := r.skip(4); err != nil {
				return err
			}

		case cpLong, cpDouble:
			if err := r.skip(8); err != nil {
				return err
			}
			// 8-byte constants take two pool slots
			i++

		case cpMethodHandle:
			if err := r.skip(3); err != nil {
				return err
			}

		case cpString, cpMethodType, cpModule, cpPackage:
			if err := r.skip(2); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: unknown constant pool tag %d", ErrCorruptClassFile, tag)
		}
	}
	return nil
}

func (r *classReader) readFields() ([]FieldInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	fields := make([]FieldInfo, 0, count)
	for i := uint16(0); i < count; i++ {
		var f FieldInfo
		if f.Flags, err = r.u2(); err != nil {
			return nil, err
		}
		nameIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		if f.Name, err = r.utf8At(nameIndex); err != nil {
			return nil, err
		}
		descIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		if f.Descriptor, err = r.utf8At(descIndex); err != nil {
			return nil, err
		}
		if err := r.skipAttributes(); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (r *classReader) readMethods() ([]MethodInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	methods := make([]MethodInfo, 0, count)
	for i := uint16(0); i < count; i++ {
		var m MethodInfo
		if m.Flags, err = r.u2(); err != nil {
			return nil, err
		}
		nameIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		if m.Name, err = r.utf8At(nameIndex); err != nil {
			return nil, err
		}
		descIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		if m.Descriptor, err = r.utf8At(descIndex); err != nil {
			return nil, err
		}
		if m.Exceptions, err = r.readMethodAttributes(); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// skipAttributes skips over an attribute table.
func (r *classReader) skipAttributes() error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		if err := r.skip(2); err != nil { // attribute_name_index
			return err
		}
		length, err := r.u4()
		if err != nil {
			return err
		}
		if err := r.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

// readMethodAttributes walks a method's attribute table, extracting the
// declared checked exceptions from the Exceptions attribute and skipping
// everything else.
func (r *classReader) readMethodAttributes() ([]string, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	var exceptions []string
	for i := uint16(0); i < count; i++ {
		nameIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		length, err := r.u4()
		if err != nil {
			return nil, err
		}

		name, err := r.utf8At(nameIndex)
		if err != nil || name != "Exceptions" {
			if err := r.skip(int(length)); err != nil {
				return nil, err
			}
			continue
		}

		exCount, err := r.u2()
		if err != nil {
			return nil, err
		}
		for j := uint16(0); j < exCount; j++ {
			classIndex, err := r.u2()
			if err != nil {
				return nil, err
			}
			exName, err := r.classNameAt(classIndex)
			if err != nil {
				return nil, err
			}
			exceptions = append(exceptions, exName)
		}
	}
	return exceptions, nil
}
