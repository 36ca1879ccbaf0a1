// autoprint is imported for the side effect of printing the buildinfo
// to os.StdErr
package autoprint

import "github.com/seirana/wesscdrs/buildinfo"

func init() {
	buildinfo.PrintToStdErr()
}
