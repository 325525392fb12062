/*
Package process backs route hooks with local commands.

Commands are allow-listed by name, usually from a hooks.yaml file:

	hooks:
	  - name: require-login
	    command: ./bin/check-session
	    env:
	      COOKIE_NAME: sid

A route then names the hook (on_enter: require-login). The command reads the
transition from WAYFINDER_* environment variables and answers through its
exit status and an optional JSON verdict on stdout.
*/
package process
