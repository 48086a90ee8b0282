//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

const (
	TERMINALTEXT = `Copyright (C) %s / %s
      %s

      This program comes with ABSOLUTELY NO WARRANTY; without even the
      implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.

      This is free software, and you are welcome to redistribute it and/or
      modify it under the terms of the GNU General Public License version 3.`

	PROJYEAR = "2022-24"
	PROJAUTH = "E. Gunderson"
	PROJURL  = "https://github.com/e-gun/ScreeningGoServer"

	HELPSUFFIX = `
     S1NB:S0 a properly formatted version of "C3{{.conffile}}C0" in "C3{{.home}}C0" configures everything for you.
         environment variables prefixed with "C3{{.envprefix}}C0" (or a "C3.envC0" file in "C3{{.cwd}}C0") override it;
         command line flags override both.
         corpora are read from "C3{{.corpdir}}C0" via the "C3{{.store}}C0" store; workers: C3{{.workers}}C0 of C3{{.cpus}}C0
`
)
