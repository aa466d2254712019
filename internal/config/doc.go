// Package config loads, validates and compiles the inventory configuration.
//
// The configuration is a YAML file rooted at a netbox key:
//
//	netbox:
//	  api:
//	    api_url: https://netbox.example.com/api
//	    api_token: 0123456789abcdef
//	  import:
//	    devices:
//	      filter: role=leaf&status=active
//	      pre_condition: platform.slug | match("^eos")
//	      group_prefix: dev_
//	      group_by:
//	        - site.slug
//	        - tags[].slug
//	      host_vars:
//	        ansible_host: primary_ip.address // "" | sub("/[0-9]+", "")
//	        facts: ALL
//	    racks:
//	      group_by: site.slug
//	  group_vars:
//	    dev_par1:
//	      ntp_server: 10.0.0.1
//	  group_hierarchy:
//	    europe:
//	      dev_par1:
//
// Import statements keep their declaration order. Every expression is
// compiled at load time by Compile, which reports all problems at once as
// diagnostics tagged with the import statement and field.
package config
