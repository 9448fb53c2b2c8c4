// Package commandline contains helper types for collecting
// command-line arguments.
package commandline // import "github.com/CognitoIQ/xmlupgrade/internal/commandline"

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xmlupgrade/internal/ordered"
)

// A KeyValue list collects "key=value" pairs from the command line.
// Later values for the same key replace earlier ones.
type KeyValue map[string]string

func (kv *KeyValue) String() string {
	var pairs []string
	ordered.Range(*kv, func(k, v string) {
		pairs = append(pairs, k+"="+v)
	})
	return strings.Join(pairs, ",")
}

// Set adds a pair to the KeyValue list.
func (kv *KeyValue) Set(s string) error {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid pair %q. must be \"key=value\"", s)
	}
	key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if key == "" || value == "" {
		return fmt.Errorf("invalid pair %q. key and value must not be empty", s)
	}
	if *kv == nil {
		*kv = make(KeyValue)
	}
	(*kv)[key] = value
	return nil
}

// The Strings type can be used to collect multiple command-line options,
// in the order provided.
type Strings []string

func (s *Strings) String() string {
	return strings.Join(*s, ",")
}

func (s *Strings) Set(val string) error {
	*s = append(*s, val)
	return nil
}

// A Count counts the occurrences of a boolean flag, as in -v -v.
type Count int

func (c *Count) String() string {
	return strconv.Itoa(int(*c))
}

// Set increments the count, or resets it for a false value such as
// -v=false.
func (c *Count) Set(val string) error {
	v, err := strconv.ParseBool(val)
	if err != nil {
		return err
	}
	if v {
		*c++
	} else {
		*c = 0
	}
	return nil
}

// IsBoolFlag allows the flag to be given without a value.
func (c *Count) IsBoolFlag() bool { return true }
