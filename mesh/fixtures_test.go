package mesh

// Mesh fixtures shared by the reader tests

var su2Fixture = []byte(` %This is an example input file in SU2 format, output from gmsh
% Comments can appear outside of data areas
NDIME= 2
% Comments can appear outside of data areas
NELEM= 22
5 5 6 13 0
5 9 10 12 1
5 12 5 13 2
5 9 12 13 3
5 13 6 14 4
5 12 10 15 5
5 8 9 13 6
5 4 5 12 7
5 1 7 14 8
5 6 1 14 9
5 3 11 15 10
5 10 3 15 11
5 8 13 16 12
5 4 12 17 13
5 13 14 16 14
5 12 15 17 15
5 7 2 16 16
5 11 0 17 17
5 2 8 16 18
5 0 4 17 19
5 14 7 16 20
5 15 11 17 21
% Comments can appear outside of data areas
NPOIN= 18
-10 0 0
10 0 1
10 10 2
-10 10 3
-5.000000000004944 0 4
-1.231725832440134e-11 0 5
4.99999999999384 0 6
10 4.999999999992398 7
5.000000000004944 10 8
1.231725832440134e-11 10 9
-4.99999999999384 10 10
-10 5 11
-2.500000000008632 4.330127018915808 12
2.50000000000863 5.669872981084192 13
6.712741669205853 3.668411415814691 14
-6.712741669205681 6.331588584184096 15
7.100939331384343 7.110089675963254 16
-7.100939331382065 2.889910324036197 17
NMARK= 4
% Comments can appear outside of data areas
MARKER_TAG= periodic-left
% Comments can appear outside of data areas
MARKER_ELEMS= 2
3 3 11
3 11 0
% Comments can appear outside of data areas
MARKER_TAG= periodic-right
MARKER_ELEMS= 2
3 1 7
3 7 2
% Comments can appear outside of data areas
MARKER_TAG= top
MARKER_ELEMS= 4
3 2 8
3 8 9
3 9 10
3 10 3
MARKER_TAG= bottom
% Comments can appear outside of data areas
MARKER_ELEMS= 4
3 0 4
3 4 5
3 5 6
3 6 1
% Comments can appear outside of data areas
`)

// Two triangles forming the unit square, one boundary set for the outer edges
var gambitFixture = []byte(`        CONTROL INFO 2.3.16
** GAMBIT NEUTRAL FILE
unit square
PROGRAM:                Gambit     VERSION:  2.3.16
Oct 2026
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         4         2         1         2         2         2
ENDOFSECTION
   NODAL COORDINATES 2.3.16
         1   0.00000000000e+00   0.00000000000e+00
         2   1.00000000000e+00   0.00000000000e+00
         3   1.00000000000e+00   1.00000000000e+00
         4   0.00000000000e+00   1.00000000000e+00
ENDOFSECTION
      ELEMENTS/CELLS 2.3.16
         1  3  3        1       2       3
         2  3  3        1       4       3
ENDOFSECTION
       ELEMENT GROUP 2.3.16
GROUP:          1 ELEMENTS:          2 MATERIAL:          2 NFLAGS:          1
                           fluid
       0
       1       2
ENDOFSECTION
 BOUNDARY CONDITIONS 2.3.16
                    Wall       1       2       0       6
         1       3       1
         1       3       2
ENDOFSECTION
 BOUNDARY CONDITIONS 2.3.16
                  Inflow       1       2       0       6
         2       3       1
         2       3       2
ENDOFSECTION
`)

// Unit square in two quads, Gmsh 2.2 with named physical groups
var gmshFixture = []byte(`$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
3
1 10 "dirichlet"
1 20 "neumann"
2 1 "domain"
$EndPhysicalNames
$Nodes
6
1 0 0 0
2 0.5 0 0
3 1 0 0
4 1 1 0
5 0.5 1 0
6 0 1 0
$EndNodes
$Elements
9
1 15 2 0 1 1
2 1 2 10 1 1 2
3 1 2 10 1 2 3
4 1 2 20 2 3 4
5 1 2 10 3 4 5
6 1 2 10 3 5 6
7 1 2 20 4 6 1
8 3 2 1 1 1 2 5 6
9 3 2 1 1 2 3 4 5
$EndElements
`)
