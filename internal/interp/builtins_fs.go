package interp

import (
	"os"
	"path/filepath"

	"github.com/jvcmarcenes/wisp/internal/token"
)

// fsObject builds the `fs` global. File operations return Error values
// on failure instead of raising, so scripts can branch on the result.
func (i *Interpreter) fsObject() *ObjectValue {
	fields := map[string]*Cell{
		"open":   NewCell(i.fsOpen()),
		"create": NewCell(i.fsCreate()),
		"exists": NewCell(i.fsExists()),
	}
	return NewObject(fields, nil)
}

// resolvePath anchors a script-supplied path at the interpreter's root
// (the directory of the running file).
func (i *Interpreter) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(i.rootPath, path)
}

func (i *Interpreter) fsOpen() *NativeFn {
	return NewNative("open", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		name, err := i.display(args[0], pos)
		if err != nil {
			return nil, err
		}
		path := i.resolvePath(name)
		if _, statErr := os.Stat(path); statErr != nil {
			return NewErrorStr("File not found"), nil
		}
		return i.fileObject(path), nil
	})
}

func (i *Interpreter) fsCreate() *NativeFn {
	return NewNative("create", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		name, err := i.display(args[0], pos)
		if err != nil {
			return nil, err
		}
		path := i.resolvePath(name)
		f, createErr := os.Create(path)
		if createErr != nil {
			return NewErrorStr(createErr.Error()), nil
		}
		f.Close()
		return i.fileObject(path), nil
	})
}

func (i *Interpreter) fsExists() *NativeFn {
	return NewNative("exists", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		name, err := i.display(args[0], pos)
		if err != nil {
			return nil, err
		}
		_, statErr := os.Stat(i.resolvePath(name))
		return NewBool(statErr == nil), nil
	})
}

// fileObject wraps an on-disk path as an object of file natives. Each
// method reopens the file, so a file object stays valid across external
// changes and never holds a descriptor open between calls.
func (i *Interpreter) fileObject(path string) *ObjectValue {
	read := NewNative("read", 0, func(i *Interpreter, pos token.Position, _ Value, _ []Value) (Value, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return NewErrorStr(err.Error()), nil
		}
		return NewString(string(data)), nil
	})

	appendText := func(i *Interpreter, pos token.Position, v Value, newline bool) (Value, error) {
		text, err := i.display(v, pos)
		if err != nil {
			return nil, err
		}
		if newline {
			text += "\n"
		}
		f, openErr := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		if openErr != nil {
			return NewErrorStr(openErr.Error()), nil
		}
		defer f.Close()
		if _, writeErr := f.WriteString(text); writeErr != nil {
			return NewErrorStr(writeErr.Error()), nil
		}
		return None, nil
	}

	write := NewNative("write", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		return appendText(i, pos, args[0], false)
	})
	writeline := NewNative("writeline", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		return appendText(i, pos, args[0], true)
	})

	wipe := NewNative("wipe", 0, func(i *Interpreter, pos token.Position, _ Value, _ []Value) (Value, error) {
		if err := os.Truncate(path, 0); err != nil {
			return NewErrorStr(err.Error()), nil
		}
		return None, nil
	})

	abs := path
	if resolved, err := filepath.Abs(path); err == nil {
		abs = resolved
	}

	fields := map[string]*Cell{
		"path":      NewCell(NewString(abs)),
		"read":      NewCell(read),
		"write":     NewCell(write),
		"writeline": NewCell(writeline),
		"wipe":      NewCell(wipe),
	}
	return NewObject(fields, nil)
}
