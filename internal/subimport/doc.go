// Package subimport attaches related NetBox records to a primary record
// before its expressions are evaluated.
//
// Each sub-import names a related collection (app/type), the key it is
// indexed by, and a bind expression evaluated on the primary record to get
// the join value(s). The matches are attached under the sub-import's name,
// as one record or a list depending on the declared relation, so that group
// and host-var expressions address them like any other key:
//
//	sub_import:
//	  - name: site_info
//	    app: dcim
//	    type: sites
//	    index: id
//	    bind: site.id
//	  - name: region_info
//	    app: dcim
//	    type: regions
//	    index: id
//	    bind: site_info.region.id
//
// A sub-import may bind through an earlier one, as region_info does above.
// Specs are resolved per record in declaration order.
package subimport
